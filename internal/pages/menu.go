package pages

import (
	"fmt"
	"strings"
)

// Menu is one entry of the sidebar. The set is closed.
type Menu int

const (
	MenuHome Menu = iota
	MenuLogin
	MenuSignUp
	MenuDashboard
)

var menuNames = [...]string{"Home", "Login", "SignUp", "Dashboard"}

var menuIcons = [...]string{"house", "box-arrow-in-right", "person-plus", "bar-chart"}

func (m Menu) String() string {
	if m < MenuHome || m > MenuDashboard {
		return fmt.Sprintf("Menu(%d)", int(m))
	}
	return menuNames[m]
}

// MarshalText encodes the menu by name.
func (m Menu) MarshalText() ([]byte, error) {
	if m < MenuHome || m > MenuDashboard {
		return nil, fmt.Errorf("unknown menu %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts names case-insensitively.
func (m *Menu) UnmarshalText(text []byte) error {
	parsed, err := ParseMenu(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMenu resolves a menu name, ignoring case.
func ParseMenu(name string) (Menu, error) {
	for i, n := range menuNames {
		if strings.EqualFold(n, name) {
			return Menu(i), nil
		}
	}
	return 0, fmt.Errorf("unknown menu %q", name)
}

// MenuItem describes a sidebar entry.
type MenuItem struct {
	Menu Menu   `json:"menu"`
	Icon string `json:"icon"`
}

// Menus lists the sidebar entries in display order.
func Menus() []MenuItem {
	items := make([]MenuItem, len(menuNames))
	for i := range menuNames {
		items[i] = MenuItem{Menu: Menu(i), Icon: menuIcons[i]}
	}
	return items
}
