package widget

// Container classes.
const (
	ContainerClass   = "jqDataTablesContainer"
	SearchMultiClass = "dataTables_searchMulti"
)

// SearchMulti selects per-column search fields instead of the global filter.
const SearchMulti = "multi"

// Layout builds the dom string: a top toolbar, the table, and a bottom
// toolbar. The letters name the controls each toolbar holds.
func Layout(opts Options) string {
	top, bottom := "frl", "ip"
	if opts.Scroller {
		top, bottom = "fr", "i"
	}
	if opts.SearchMode == SearchMulti {
		top, bottom = "rl", "ip"
	}
	if len(opts.Buttons) > 0 {
		top = "B" + top
	}

	return `<"` + toolbarPrefix + `tl ui-corner-tr"` + top + `>` +
		`t` +
		`<"` + toolbarPrefix + `bl ui-corner-br"` + bottom + `>`
}

// ContainerClasses returns the classes of the element wrapping the table.
func ContainerClasses(opts Options) []string {
	classes := []string{ContainerClass}
	if opts.SearchMode == SearchMulti {
		classes = append(classes, SearchMultiClass)
	}
	return classes
}
