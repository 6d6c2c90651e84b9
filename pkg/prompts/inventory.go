package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

// MaxItemGroups is how many item groups are narrated before the summary
// falls back to "among other things".
const MaxItemGroups = 3

// Category is an item classification derived from the last word of its name.
type Category string

const (
	CategoryNone        Category = ""
	CategoryClothing    Category = "clothing"
	CategoryRobes       Category = "robes"
	CategoryArmor       Category = "armor"
	CategoryWeapon      Category = "weapon"
	CategoryLockpicking Category = "lockpicking"
)

var suffixCategories = map[string]Category{}

func init() {
	for cat, suffixes := range map[Category][]string{
		CategoryClothing:    {"Shirt", "Pants", "Shoes", "Skirt", "Belt", "Ring", "Amulet", "Glove"},
		CategoryRobes:       {"Robe"},
		CategoryArmor:       {"Cuirass", "Helm", "Greaves", "Boots", "Pauldron", "Gauntlet", "Bracer", "Shield", "Helmet"},
		CategoryWeapon:      {"Dagger", "Sword", "Longsword", "Shortsword", "Axe", "Mace", "Spear", "Staff", "Bow", "Crossbow", "Club", "Halberd", "Katana", "Saber", "Claymore", "Arrow", "Bolt", "Warhammer"},
		CategoryLockpicking: {"Lockpick", "Probe"},
	} {
		for _, s := range suffixes {
			suffixCategories[foldKey(s)] = cat
		}
	}
}

// Casers are stateful, so each call gets its own.
func foldKey(s string) string { return cases.Fold().String(s) }

func lowerWord(s string) string { return cases.Lower(language.English).String(s) }

// consumablePrefixes are groups narrated by how varied they are rather than
// as a set.
var consumablePrefixes = map[string]bool{
	"potion": true,
	"scroll": true,
}

// Classify returns the category of an item name.
func Classify(name string) Category {
	words := strings.Fields(name)
	if len(words) == 0 {
		return CategoryNone
	}
	return suffixCategories[foldKey(words[len(words)-1])]
}

// ItemGroup is a run of items sharing their first word, such as every
// "Iron" weapon or every "Potion of ...".
type ItemGroup struct {
	Prefix string
	Items  []snapshot.Item
}

// GroupItems groups items by case-insensitive first word and orders the
// groups largest first. Groups of equal size keep document order.
func GroupItems(items snapshot.Items) []ItemGroup {
	var groups []ItemGroup
	index := map[string]int{}
	for _, it := range items {
		if it.Count <= 0 {
			continue
		}
		words := strings.Fields(it.Name)
		if len(words) == 0 {
			continue
		}
		key := foldKey(words[0])
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ItemGroup{Prefix: words[0]})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Items) > len(groups[j].Items)
	})
	return groups
}

// Inventory summarizes the actor's gold and what they carry.
func Inventory(inv snapshot.Inventory) string {
	var sb strings.Builder
	if inv.Gold <= 0 {
		sb.WriteString("You have no gold.")
	} else {
		fmt.Fprintf(&sb, "You have %s gold.", humanize.Comma(int64(inv.Gold)))
	}
	if inv.StoreGold > 0 {
		fmt.Fprintf(&sb, " As a merchant, you have %s gold to trade with.", humanize.Comma(int64(inv.StoreGold)))
	}

	groups := GroupItems(inv.Items)
	if len(groups) == 0 {
		return sb.String()
	}

	shown := groups
	if len(shown) > MaxItemGroups {
		shown = shown[:MaxItemGroups]
	}
	parts := make([]string, len(shown))
	for i, g := range shown {
		parts[i] = describeGroup(g)
	}

	sb.WriteString(" You are carrying ")
	sb.WriteString(listItems(parts))
	switch {
	case len(groups) > 2*MaxItemGroups:
		sb.WriteString(", among many other things")
	case len(groups) > MaxItemGroups:
		sb.WriteString(", among other things")
	}
	sb.WriteByte('.')
	return sb.String()
}

func describeGroup(g ItemGroup) string {
	if len(g.Items) == 1 {
		return describeSingle(g.Items[0])
	}

	n := len(g.Items)
	if consumablePrefixes[foldKey(g.Prefix)] {
		noun := pluralize(lowerWord(g.Prefix))
		switch {
		case n == 2:
			return "a couple of " + noun
		case n < 5:
			return "a few different types of " + noun
		default:
			return "a variety of " + noun
		}
	}

	cat := Classify(g.Items[0].Name)
	for _, it := range g.Items[1:] {
		if Classify(it.Name) != cat {
			cat = CategoryNone
			break
		}
	}

	switch cat {
	case CategoryClothing, CategoryArmor, CategoryLockpicking:
		noun := string(cat)
		if cat == CategoryLockpicking {
			noun = "lockpicking equipment"
		}
		switch {
		case n == 2:
			return fmt.Sprintf("a couple of pieces of %s %s", g.Prefix, noun)
		case n < 5:
			return fmt.Sprintf("a set of %s %s", g.Prefix, noun)
		default:
			return fmt.Sprintf("a complete set of %s %s", g.Prefix, noun)
		}
	case CategoryRobes, CategoryWeapon:
		noun := "robes"
		if cat == CategoryWeapon {
			noun = "weapons"
		}
		switch {
		case n == 2:
			return fmt.Sprintf("a couple of %s %s", g.Prefix, noun)
		case n < 5:
			return fmt.Sprintf("a set of %s %s", g.Prefix, noun)
		default:
			return fmt.Sprintf("a collection of %s %s", g.Prefix, noun)
		}
	default:
		switch {
		case n == 2:
			return fmt.Sprintf("a couple of %s items", g.Prefix)
		case n < 5:
			return fmt.Sprintf("a few %s items", g.Prefix)
		default:
			return fmt.Sprintf("a variety of %s items", g.Prefix)
		}
	}
}

// describeSingle names an item in full with a quantity word.
func describeSingle(it snapshot.Item) string {
	switch {
	case it.Count == 1:
		return article(it.Name) + " " + it.Name
	case it.Count == 2:
		return "two " + pluralizeName(it.Name)
	case it.Count <= 5:
		return "a few " + pluralizeName(it.Name)
	default:
		return "a stack of " + pluralizeName(it.Name)
	}
}

func article(word string) string {
	if word != "" && strings.ContainsRune("AEIOUaeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

// pluralizeName pluralizes the head noun of an item name: the last word, or
// the word before " of " in names like "Potion of Restore Health".
func pluralizeName(name string) string {
	head, tail, found := strings.Cut(name, " of ")
	if found {
		return pluralizeLast(head) + " of " + tail
	}
	return pluralizeLast(name)
}

func pluralizeLast(phrase string) string {
	i := strings.LastIndexByte(phrase, ' ')
	return phrase[:i+1] + pluralize(phrase[i+1:])
}

func pluralize(word string) string {
	lw := lowerWord(word)
	switch {
	case word == "":
		return word
	case strings.HasSuffix(lw, "ss"), strings.HasSuffix(lw, "x"), strings.HasSuffix(lw, "z"),
		strings.HasSuffix(lw, "ch"), strings.HasSuffix(lw, "sh"):
		return word + "es"
	case strings.HasSuffix(lw, "s"):
		return word
	case strings.HasSuffix(lw, "y") && len(lw) > 1 && !strings.ContainsRune("aeiou", rune(lw[len(lw)-2])):
		return word[:len(word)-1] + "ies"
	default:
		return word + "s"
	}
}

// listItems joins with commas and a final "and": "A and B", "A, B, and C".
func listItems(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	}
	last := len(parts) - 1
	return strings.Join(parts[:last], ", ") + ", and " + parts[last]
}
