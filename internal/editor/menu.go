package editor

// MenuItem is one entry in a menu or submenu.
type MenuItem struct {
	Label   string
	Action  string
	Submenu []MenuItem
}

func (it MenuItem) hasSubmenu() bool { return len(it.Submenu) > 0 }

// Menu is the static tree of items a MenuState navigates.
type Menu struct {
	Items []MenuItem
}

func (m *Menu) itemsAt(prefix []int) []MenuItem {
	items := m.Items
	for _, idx := range prefix {
		if idx < 0 || idx >= len(items) {
			return nil
		}
		items = items[idx].Submenu
	}
	return items
}

func (m *Menu) highlighted(path []int) (MenuItem, bool) {
	if len(path) == 0 {
		return MenuItem{}, false
	}
	items := m.itemsAt(path[:len(path)-1])
	idx := path[len(path)-1]
	if idx < 0 || idx >= len(items) {
		return MenuItem{}, false
	}
	return items[idx], true
}

// MenuState is {Closed, Open(menu_idx), OpenSubmenu(path)} collapsed into
// a single path slice: nil/empty means Closed, length 1 means
// Open(path[0]), length > 1 means OpenSubmenu(path).
type MenuState struct {
	path []int
}

func NewMenuState() MenuState { return MenuState{} }

func (s MenuState) Closed() bool { return len(s.path) == 0 }

func (s MenuState) Path() []int {
	out := make([]int, len(s.path))
	copy(out, s.path)
	return out
}

// Activate opens the menu at its first top-level item.
func (s *MenuState) Activate() { s.path = []int{0} }

// Close returns to Closed.
func (s *MenuState) Close() { s.path = nil }

// Left closes the deepest submenu, or wraps left at the top level.
func (s *MenuState) Left(m *Menu) {
	if len(s.path) == 0 {
		return
	}
	if len(s.path) > 1 {
		s.path = s.path[:len(s.path)-1]
		return
	}
	n := len(m.Items)
	if n == 0 {
		return
	}
	s.path[0] = ((s.path[0]-1)%n + n) % n
}

// Right opens the highlighted item's submenu, or wraps right at the top
// level when the highlighted item has no children.
func (s *MenuState) Right(m *Menu) {
	if len(s.path) == 0 {
		return
	}
	if item, ok := m.highlighted(s.path); ok && item.hasSubmenu() {
		s.path = append(append([]int{}, s.path...), 0)
		return
	}
	if len(s.path) == 1 {
		n := len(m.Items)
		if n == 0 {
			return
		}
		s.path[0] = (s.path[0] + 1) % n
	}
}

// Up moves the highlight up within the current level.
func (s *MenuState) Up(m *Menu) { s.move(m, -1) }

// Down moves the highlight down within the current level.
func (s *MenuState) Down(m *Menu) { s.move(m, 1) }

func (s *MenuState) move(m *Menu, delta int) {
	if len(s.path) == 0 {
		return
	}
	siblings := m.itemsAt(s.path[:len(s.path)-1])
	n := len(siblings)
	if n == 0 {
		return
	}
	last := len(s.path) - 1
	s.path[last] = ((s.path[last]+delta)%n + n) % n
}

// Execute opens a submenu if the highlighted item has one; otherwise it
// returns the item's action and closes the menu.
func (s *MenuState) Execute(m *Menu) (action string, fired bool) {
	item, ok := m.highlighted(s.path)
	if !ok {
		return "", false
	}
	if item.hasSubmenu() {
		s.path = append(append([]int{}, s.path...), 0)
		return "", false
	}
	s.Close()
	return item.Action, true
}
