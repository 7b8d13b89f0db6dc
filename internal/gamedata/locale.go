package gamedata

import "fmt"

// Locale resolves display names for one language. Lookups fall back to the
// catalog's internal name when the language has no override, which is always
// the case for en-EN.
type Locale struct {
	Language string
	names    map[ItemID]string
}

// NewLocale builds a locale view over the dataset.
func NewLocale(data *GameData, language string) (*Locale, error) {
	names, ok := data.Locales[language]
	if !ok {
		return nil, fmt.Errorf("unknown locale %q", language)
	}
	return &Locale{Language: language, names: names}, nil
}

// DisplayName returns the localized item name.
func (l *Locale) DisplayName(data *GameData, id ItemID) (string, error) {
	if name, ok := l.names[id]; ok {
		return name, nil
	}
	obj, err := data.Object(id)
	if err != nil {
		return "", fmt.Errorf("display name: %w", err)
	}
	return obj.Name, nil
}
