package prefstore

import (
	"context"
	"errors"
)

// Profile namespace keys.
const (
	KeyTheme            = "theme"
	KeyDirection        = "direction"
	KeyCurrentUser      = "currentUser"
	KeyRememberMe       = "rememberMe"
	KeyPatternDownloads = "patternDownloads"
)

// KeyUsers holds the mock user collection in SiteNamespace.
const KeyUsers = "users"

// Theme is the color scheme of a profile.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Direction is the text direction of a profile.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == DirectionRTL {
		return DirectionLTR
	}
	return DirectionRTL
}

// UIPreferences is the appearance state restored on every page load.
type UIPreferences struct {
	Theme     Theme     `json:"theme"`
	Direction Direction `json:"direction"`
}

// LoadUIPreferences reads theme and direction, falling back to light and ltr
// for missing or unrecognized values.
func LoadUIPreferences(ctx context.Context, s Store, namespace string) (UIPreferences, error) {
	prefs := UIPreferences{Theme: ThemeLight, Direction: DirectionLTR}

	var theme Theme
	if err := GetJSON(ctx, s, namespace, KeyTheme, &theme); err != nil && !errors.Is(err, ErrNotFound) {
		return prefs, err
	}
	if theme == ThemeDark {
		prefs.Theme = ThemeDark
	}

	var direction Direction
	if err := GetJSON(ctx, s, namespace, KeyDirection, &direction); err != nil && !errors.Is(err, ErrNotFound) {
		return prefs, err
	}
	if direction == DirectionRTL {
		prefs.Direction = DirectionRTL
	}

	return prefs, nil
}

// ToggleTheme flips and persists the theme, returning the new value.
func ToggleTheme(ctx context.Context, s Store, namespace string) (Theme, error) {
	var next Theme
	err := UpdateJSON(ctx, s, namespace, KeyTheme, func(t *Theme, _ bool) error {
		if *t != ThemeDark {
			*t = ThemeLight
		}
		*t = t.Toggle()
		next = *t
		return nil
	})
	return next, err
}

// ToggleDirection flips and persists the text direction, returning the new value.
func ToggleDirection(ctx context.Context, s Store, namespace string) (Direction, error) {
	var next Direction
	err := UpdateJSON(ctx, s, namespace, KeyDirection, func(d *Direction, _ bool) error {
		if *d != DirectionRTL {
			*d = DirectionLTR
		}
		*d = d.Toggle()
		next = *d
		return nil
	})
	return next, err
}
