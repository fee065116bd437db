package app

// layoutDims holds computed layout dimensions for the UI.
type layoutDims struct {
	width                  int
	height                 int
	headerHeight           int
	footerHeight           int
	inputHeight            int
	bannerHeight           int
	bodyHeight             int
	gapX                   int
	gapY                   int
	leftWidth              int
	rightWidth             int
	leftInnerWidth         int
	rightInnerWidth        int
	leftInnerHeight        int
	rightTopHeight         int
	rightBottomHeight      int
	rightTopInnerHeight    int
	rightBottomInnerHeight int
}

// setWindowSize updates the window dimensions and applies the layout.
func (m *Model) setWindowSize(width, height int) {
	m.view.windowWidth = width
	m.view.windowHeight = height
	m.applyLayout(m.computeLayout())
}

// computeLayout calculates the layout dimensions based on window size and UI state.
func (m *Model) computeLayout() layoutDims {
	width := m.view.windowWidth
	height := m.view.windowHeight
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 40
	}

	headerHeight := 1
	footerHeight := 1
	inputHeight := 0
	if m.input.active() {
		inputHeight = 1
		if m.input.err != "" {
			inputHeight++
		}
		if m.input.mode == inputQuickOpen {
			inputHeight += max(1, len(m.input.quick))
		}
	}
	bannerHeight := 0
	if m.banner != "" || m.info != "" {
		bannerHeight = 1
	}
	gapX := 1
	gapY := 1

	bodyHeight := max(height-headerHeight-footerHeight-inputHeight-bannerHeight, 8)

	leftRatio := 0.30
	if m.view.focused == paneExplorer {
		leftRatio = 0.40
	}
	leftWidth := int(float64(width-gapX) * leftRatio)
	rightWidth := width - leftWidth - gapX
	if leftWidth < minLeftPaneWidth {
		leftWidth = minLeftPaneWidth
		rightWidth = width - leftWidth - gapX
	}
	if rightWidth < minRightPaneWidth {
		rightWidth = minRightPaneWidth
		leftWidth = width - rightWidth - gapX
	}
	if leftWidth < minLeftPaneWidth {
		leftWidth = minLeftPaneWidth
	}
	if leftWidth+rightWidth+gapX > width {
		rightWidth = max(0, width-leftWidth-gapX)
	}

	topRatio := 0.50
	switch m.view.focused {
	case paneGit:
		topRatio = 0.70
	case paneSearch, paneSamples:
		topRatio = 0.30
	}

	rightTopHeight := max(int(float64(bodyHeight-gapY)*topRatio), 6)
	rightBottomHeight := bodyHeight - rightTopHeight - gapY
	if rightBottomHeight < 4 {
		rightBottomHeight = 4
		rightTopHeight = bodyHeight - rightBottomHeight - gapY
	}

	paneFrameX := m.basePaneStyle().GetHorizontalFrameSize()
	paneFrameY := m.basePaneStyle().GetVerticalFrameSize()

	return layoutDims{
		width:                  width,
		height:                 height,
		headerHeight:           headerHeight,
		footerHeight:           footerHeight,
		inputHeight:            inputHeight,
		bannerHeight:           bannerHeight,
		bodyHeight:             bodyHeight,
		gapX:                   gapX,
		gapY:                   gapY,
		leftWidth:              leftWidth,
		rightWidth:             rightWidth,
		leftInnerWidth:         max(1, leftWidth-paneFrameX),
		rightInnerWidth:        max(1, rightWidth-paneFrameX),
		leftInnerHeight:        max(1, bodyHeight-paneFrameY),
		rightTopInnerHeight:    max(1, rightTopHeight-paneFrameY),
		rightBottomInnerHeight: max(1, rightBottomHeight-paneFrameY),
		rightTopHeight:         rightTopHeight,
		rightBottomHeight:      rightBottomHeight,
	}
}

// applyLayout sizes the viewports to the computed panes.
func (m *Model) applyLayout(layout layoutDims) {
	// title line plus the changed-files list above the diff
	diffHeight := max(3, layout.rightTopInnerHeight-1-m.statusListHeight(layout))
	m.gitPane.diff.Width = layout.rightInnerWidth
	m.gitPane.diff.Height = diffHeight

	codeWidth := layout.rightInnerWidth
	codeHeight := max(1, layout.rightBottomInnerHeight-2)
	if m.samples.code.Width != codeWidth && m.samples.showing {
		m.samples.code.Width = codeWidth
		if sample, ok := m.selectedSample(); ok {
			m.samples.code.SetContent(m.sampleContent(sample))
		}
	}
	m.samples.code.Width = codeWidth
	m.samples.code.Height = codeHeight
}

// statusListHeight is the number of rows given to the changed-files list;
// the remainder of the top right pane shows the diff.
func (m *Model) statusListHeight(layout layoutDims) int {
	available := layout.rightTopInnerHeight - 1
	if m.gitPane.diffPath == "" {
		return max(1, available)
	}
	rows := len(m.gitPane.status.TreeFlat)
	return max(1, min(rows+1, available/2))
}
