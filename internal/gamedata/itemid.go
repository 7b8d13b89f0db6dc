package gamedata

import (
	"fmt"
	"strings"
)

// ItemID is a qualified item identifier, e.g. "(O)378" for Copper Ore.
// The single-letter prefix names the item registry: (O) objects, (BC) big
// craftables. Save files and most game data use the qualified form.
type ItemID string

// DishOfTheDay is the rotating saloon special. Garbage can tables reference
// it by this sentinel rather than a concrete object ID.
const DishOfTheDay ItemID = "(O)DishOfTheDay"

// ParseItemID normalizes an item reference from configuration. Accepted
// forms: a qualified ID ("(O)378"), a bare object number ("378", qualified
// as an object), or the special token "DISH_OF_THE_DAY".
func ParseItemID(s string) (ItemID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty item id")
	}
	if s == "DISH_OF_THE_DAY" {
		return DishOfTheDay, nil
	}
	if strings.HasPrefix(s, "(") {
		close := strings.Index(s, ")")
		if close < 2 || close == len(s)-1 {
			return "", fmt.Errorf("malformed item id %q", s)
		}
		return ItemID(s), nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("malformed item id %q: bare ids must be numeric", s)
		}
	}
	return ItemID("(O)" + s), nil
}
