package dom

// WikitextTagWidths are the opening and closing syntax widths of tags written
// in wikitext. Unknown means the width depends on context.
var WikitextTagWidths = map[string][2]int{
	"body":       {0, 0},
	"html":       {0, 0},
	"head":       {0, 0},
	"p":          {0, 0},
	"meta":       {0, 0},
	"ol":         {0, 0},
	"ul":         {0, 0},
	"dl":         {0, 0},
	"tbody":      {0, 0},
	"thead":      {0, 0},
	"tfoot":      {0, 0},
	"br":         {0, 0},
	"figcaption": {0, 0},
	"pre":        {1, 0},
	"li":         {1, 0},
	"dt":         {1, 0},
	"dd":         {1, 0},
	"h1":         {1, 1},
	"h2":         {2, 2},
	"h3":         {3, 3},
	"h4":         {4, 4},
	"h5":         {5, 5},
	"h6":         {6, 6},
	"hr":         {4, 0},
	"table":      {2, 2},
	"tr":         {Unknown, 0},
	"td":         {Unknown, 0},
	"th":         {Unknown, 0},
	"b":          {3, 3},
	"i":          {2, 2},
	"figure":     {2, 2},
}

// limitedTSRTags are tags whose tsr covers only the start tag.
var limitedTSRTags = map[string]bool{
	"b": true, "i": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "dl": true,
	"li": true, "dt": true, "dd": true,
	"table": true, "caption": true, "tr": true, "td": true, "th": true,
	"hr": true, "br": true, "pre": true,
}

var quoteTags = map[string]bool{"b": true, "i": true}

var listTags = map[string]bool{"ul": true, "ol": true, "dl": true}

var listItemTags = map[string]bool{"li": true, "dd": true, "dt": true}

// fosterParentTags are the parents whose children may be foster-parented.
var fosterParentTags = map[string]bool{
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
}

var tbodyOrTr = map[string]bool{"tbody": true, "tr": true}

func IsQuoteTag(name string) bool    { return quoteTags[name] }
func IsListTag(name string) bool     { return listTags[name] }
func IsListItemTag(name string) bool { return listItemTags[name] }
func IsTbodyOrTr(name string) bool   { return tbodyOrTr[name] }
