// Package widget describes the client side table widget: its default
// settings, the toolbar layout, per-table options and row styling rules.
package widget

const (
	toolbarPrefix = "fg-toolbar ui-toolbar ui-widget-header ui-helper-clearfix ui-corner-"
	stateDefault  = "ui-state-default"
	sortIcon      = "css_right ui-icon ui-icon-"
	headerFooter  = "fg-toolbar ui-toolbar ui-widget-header ui-helper-clearfix"
)

// Stripe classes the server renders on alternating rows.
const (
	StripeEven = "foswikiTableEven"
	StripeOdd  = "foswikiTableOdd"
)

// Language holds the widget's UI strings.
type Language struct {
	Search         string            `json:"search"`
	Info           string            `json:"info"`
	InfoEmpty      string            `json:"infoEmpty"`
	InfoFiltered   string            `json:"infoFiltered"`
	LengthMenu     string            `json:"lengthMenu"`
	EmptyTable     string            `json:"emptyTable"`
	LoadingRecords string            `json:"loadingRecords"`
	Processing     string            `json:"processing"`
	ZeroRecords    string            `json:"zeroRecords"`
	Paginate       map[string]string `json:"paginate"`
}

// Settings is the complete client configuration of one table widget.
type Settings struct {
	JQueryUI      bool              `json:"jQueryUI"`
	Searching     bool              `json:"searching"`
	SearchDelay   int               `json:"searchDelay"`
	Info          bool              `json:"info"`
	LengthChange  bool              `json:"lengthChange"`
	Paging        bool              `json:"paging"`
	PageLength    int               `json:"pageLength,omitempty"`
	Processing    bool              `json:"processing"`
	StateDuration int               `json:"stateDuration"`
	Dom           string            `json:"dom"`
	Renderer      string            `json:"renderer"`
	LengthMenu    []int             `json:"lengthMenu"`
	StripeClasses []string          `json:"stripeClasses"`
	Language      Language          `json:"language"`
	Classes       map[string]string `json:"classes"`

	ContainerClasses []string  `json:"containerClasses"`
	Scroller         bool      `json:"scroller,omitempty"`
	Buttons          []string  `json:"buttons,omitempty"`
	Select           *Select   `json:"select,omitempty"`
	RowGroup         *RowGroup `json:"rowGroup,omitempty"`
	AutoColor        []string  `json:"autoColor,omitempty"`
	DateTimeFormat   string    `json:"dateTimeFormat,omitempty"`
	DateTimeLocale   string    `json:"dateTimeLocale,omitempty"`
}

// DefaultSettings returns the settings every table starts from.
func DefaultSettings() Settings {
	return Settings{
		JQueryUI:      true,
		Searching:     false,
		SearchDelay:   1000,
		Info:          false,
		LengthChange:  false,
		Paging:        false,
		Processing:    true,
		StateDuration: -1,
		Dom:           Layout(Options{}),
		Renderer:      "jqueryui",
		LengthMenu:    []int{5, 10, 25, 50, 100},
		StripeClasses: []string{StripeEven, StripeOdd},
		Language: Language{
			Search:         "<b class='i18n' data-i18n-message='filter'>Filter:</b>",
			Info:           "_START_ - _END_ of <b>_TOTAL_</b>",
			InfoEmpty:      "<span class='foswikiAlert i18n' data-i18n-message='infoEmpty'>nothing found</span>",
			LengthMenu:     "<b class='i18n' data-i18n-message='lengthMenu'>Results per page:</b> _MENU_",
			EmptyTable:     "<span class='i18n' data-i18n-message='emptyTable'>No data available in table</span>",
			LoadingRecords: "<span class='i18n' data-i18n-message='loadingRecords'>Loading ...</span>",
			Processing:     "<span class='i18n' data-i18n-message='processing'>Processing ...</span>",
			ZeroRecords:    "<span class='i18n' data-i18n-message='zeroRecords'>No matching records found</span>",
			Paginate: map[string]string{
				"previous": "<span class='i18n' data-i18n-message='previous'>Previous</span>",
				"next":     "<span class='i18n' data-i18n-message='next'>Next</span>",
			},
		},
		Classes:          defaultClasses(),
		ContainerClasses: []string{ContainerClass},
	}
}

func defaultClasses() map[string]string {
	return map[string]string{
		"sPageButton":         "fg-button ui-button " + stateDefault,
		"sPageButtonActive":   "ui-state-active",
		"sPageButtonDisabled": "ui-state-disabled",

		// the paging type is appended by the client
		"sPaging": "dataTables_paginate fg-buttonset ui-buttonset fg-buttonset-multi ui-buttonset-multi paging_",

		"sSortAsc":            " sorting_asc",
		"sSortDesc":           " sorting_desc",
		"sSortable":           " sorting",
		"sSortableAsc":        " sorting_asc_disabled",
		"sSortableDesc":       " sorting_desc_disabled",
		"sSortableNone":       " sorting_disabled",
		"sSortJUIAsc":         sortIcon + "triangle-1-n",
		"sSortJUIDesc":        sortIcon + "triangle-1-s",
		"sSortJUI":            sortIcon + "carat-2-n-s",
		"sSortJUIAscAllowed":  sortIcon + "carat-1-n",
		"sSortJUIDescAllowed": sortIcon + "carat-1-s",
		"sSortJUIWrapper":     "DataTables_sort_wrapper",
		"sSortIcon":           "DataTables_sort_icon",

		"sScrollHead": "dataTables_scrollHead ",
		"sScrollFoot": "dataTables_scrollFoot ",

		"sHeaderTH":  "",
		"sFooterTH":  "",
		"sJUIHeader": headerFooter + " ui-corner-tl ui-corner-tr",
		"sJUIFooter": headerFooter + " ui-corner-bl ui-corner-br",
	}
}
