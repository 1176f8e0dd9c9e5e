package logic

// Navigator handles selection and viewport management over a flat list of rows
type Navigator struct {
	selectedIndex  int
	viewportOffset int
	viewportHeight int
	totalItems     int
}

// NewNavigator creates a new navigator
func NewNavigator() *Navigator {
	return &Navigator{viewportHeight: 20}
}

// SelectedIndex returns the current selected row
func (n *Navigator) SelectedIndex() int {
	return n.selectedIndex
}

// ViewportOffset returns the first visible row
func (n *Navigator) ViewportOffset() int {
	return n.viewportOffset
}

// ViewportHeight returns the number of lines available to rows and scroll indicators
func (n *Navigator) ViewportHeight() int {
	return n.viewportHeight
}

// Total returns the row count the navigator was last given
func (n *Navigator) Total() int {
	return n.totalItems
}

// SetViewportHeight changes the available height, keeping the selection visible
func (n *Navigator) SetViewportHeight(height int) {
	if height < 1 {
		height = 1
	}
	n.viewportHeight = height
	n.ensureSelectedVisible()
}

// SetTotal updates the row count. The selection is clamped, never moved otherwise,
// so rows appended by a merge tick do not disturb the cursor.
func (n *Navigator) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	n.totalItems = total
	n.ensureSelectedVisible()
}

// SetSelectedIndex sets the selected index and ensures it's visible
func (n *Navigator) SetSelectedIndex(index int) (int, int) {
	n.selectedIndex = index
	n.ensureSelectedVisible()
	return n.selectedIndex, n.viewportOffset
}

// Reset moves to the top, used when a new search starts
func (n *Navigator) Reset() {
	n.selectedIndex = 0
	n.viewportOffset = 0
	n.totalItems = 0
}

func (n *Navigator) Up()   { n.SetSelectedIndex(n.selectedIndex - 1) }
func (n *Navigator) Down() { n.SetSelectedIndex(n.selectedIndex + 1) }
func (n *Navigator) Home() { n.SetSelectedIndex(0) }
func (n *Navigator) End()  { n.SetSelectedIndex(n.totalItems - 1) }

// PageUp moves the selection up by one page
func (n *Navigator) PageUp() {
	n.SetSelectedIndex(n.selectedIndex - n.pageSize())
}

// PageDown moves the selection down by one page
func (n *Navigator) PageDown() {
	n.SetSelectedIndex(n.selectedIndex + n.pageSize())
}

func (n *Navigator) pageSize() int {
	pageSize := n.viewportHeight - 2 // Leave some overlap
	if pageSize < 1 {
		pageSize = 1
	}
	return pageSize
}

// Indicators reports whether the "more above" and "more below" lines are shown
func (n *Navigator) Indicators() (top, bottom bool) {
	top = n.viewportOffset > 0
	bottom = n.viewportOffset+n.viewportHeight < n.totalItems
	if !bottom && top {
		// Top indicator eats a line, so the last row may no longer fit
		bottom = n.totalItems-n.viewportOffset > n.viewportHeight-1
	}
	return top, bottom
}

// EffectiveHeight is the number of rows shown once indicators take their lines
func (n *Navigator) EffectiveHeight() int {
	top, bottom := n.Indicators()
	h := n.viewportHeight
	if top {
		h--
	}
	if bottom {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (n *Navigator) ensureSelectedVisible() {
	if n.selectedIndex >= n.totalItems {
		n.selectedIndex = n.totalItems - 1
	}
	if n.selectedIndex < 0 {
		n.selectedIndex = 0
	}

	// If selected item is above viewport, scroll up
	if n.selectedIndex < n.viewportOffset {
		n.viewportOffset = n.selectedIndex
	}

	effectiveHeight := n.EffectiveHeight()

	// If selected item is below effective viewport, scroll down
	if n.selectedIndex >= n.viewportOffset+effectiveHeight {
		n.viewportOffset = n.selectedIndex - effectiveHeight + 1
		// Scrolling down may have added the top indicator
		if h := n.EffectiveHeight(); n.selectedIndex >= n.viewportOffset+h {
			n.viewportOffset = n.selectedIndex - h + 1
		}
	}

	// The maximum offset should ensure we can still fill the viewport
	maxOffset := n.totalItems - n.EffectiveHeight()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if n.viewportOffset > maxOffset {
		n.viewportOffset = maxOffset
	}
	if n.viewportOffset < 0 {
		n.viewportOffset = 0
	}
}
