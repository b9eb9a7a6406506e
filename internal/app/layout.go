package app

import "github.com/charmbracelet/bubbles/table"

const (
	headerHeight   = 1
	footerHeight   = 2
	logPaneLines   = 5
	paneChrome     = 3 // border top and bottom plus the title line
	minTableRows   = 3
	markerWidth    = 3
	kindWidth      = 13
	sizeWidth      = 10
	minPathWidth   = 12
	cellPaddings   = 8 // bubbles table pads each of the four cells
	paneHorizontal = 4
)

type layoutDims struct {
	width       int
	height      int
	tableHeight int
	logHeight   int
	innerWidth  int
}

func (m *Model) setWindowSize(width, height int) {
	m.width = width
	m.height = height
	m.applyLayout(m.computeLayout())
}

func (m *Model) computeLayout() layoutDims {
	width := maxInt(m.width, 40)
	height := maxInt(m.height, 16)

	logHeight := logPaneLines
	tableHeight := height - headerHeight - footerHeight - (logHeight + paneChrome) - paneChrome
	if tableHeight < minTableRows {
		tableHeight = minTableRows
	}
	return layoutDims{
		width:       width,
		height:      height,
		tableHeight: tableHeight,
		logHeight:   logHeight,
		innerWidth:  maxInt(width-paneHorizontal, 20),
	}
}

func (m *Model) applyLayout(layout layoutDims) {
	m.table.SetWidth(layout.innerWidth)
	m.table.SetHeight(layout.tableHeight)
	m.table.SetColumns(statusColumns(layout.innerWidth, m.config.ShowIcons))
}

func statusColumns(totalWidth int, showIcons bool) []table.Column {
	path := maxInt(totalWidth-markerWidth-kindWidth-sizeWidth-cellPaddings, minPathWidth)
	marker := " "
	if showIcons {
		marker = "●"
	}
	return []table.Column{
		{Title: marker, Width: markerWidth},
		{Title: "Path", Width: path},
		{Title: "Change", Width: kindWidth},
		{Title: "Size", Width: sizeWidth},
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
