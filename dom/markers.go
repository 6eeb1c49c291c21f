package dom

import (
	"regexp"
	"strings"
)

// Marker and content types carried in typeof.
const (
	TypeTransclusion    = "mw:Transclusion"
	TypeParam           = "mw:Param"
	TypeEndSuffix       = "/End"
	TypeEndTag          = "mw:EndTag"
	TypeTSRMarker       = "mw:TSRMarker"
	TypeStrippedTag     = "mw:Placeholder/StrippedTag"
	TypeEntity          = "mw:Entity"
	TypeLanguageVariant = "mw:LanguageVariant"
	TypeDOMFragment     = "mw:DOMFragment"
	TypeExpandedAttrs   = "mw:ExpandedAttrs"
)

var (
	placeholderRe = regexp.MustCompile(`^mw:Placeholder(/\w*)?$`)
	limitedTSRRe  = regexp.MustCompile(`^mw:(Placeholder|LanguageVariant)(/\w*)?$`)
)

// IsInvocationType reports whether t is an invocation start or end type.
func IsInvocationType(t string) bool {
	t = strings.TrimSuffix(t, TypeEndSuffix)
	return t == TypeTransclusion || t == TypeParam
}

// IsInvocationEndType reports whether t is an invocation end type.
func IsInvocationEndType(t string) bool {
	return strings.HasSuffix(t, TypeEndSuffix) && IsInvocationType(t)
}

// InvocationType returns the invocation start or end type carried by an
// element, or "".
func (d *Document) InvocationType(id int) string {
	return d.MatchTypeOf(id, IsInvocationType)
}

// IsInvocationMarker reports whether id is a meta marking an invocation boundary.
func (d *Document) IsInvocationMarker(id int) bool {
	return d.Name(id) == "meta" && d.InvocationType(id) != ""
}

func (d *Document) IsInvocationStartMarker(id int) bool {
	t := d.InvocationType(id)
	return d.Name(id) == "meta" && t != "" && !IsInvocationEndType(t)
}

func (d *Document) IsInvocationEndMarker(id int) bool {
	return d.Name(id) == "meta" && IsInvocationEndType(d.InvocationType(id))
}

// IsTagShadow reports whether id is a meta recording an end tag or a tsr.
func (d *Document) IsTagShadow(id int) bool {
	if d.Name(id) != "meta" {
		return false
	}
	t := d.TypeOf(id)
	return t == TypeEndTag || t == TypeTSRMarker
}

func (d *Document) IsStrippedTag(id int) bool {
	return d.IsElement(id) && d.HasTypeOf(id, TypeStrippedTag)
}

// IsPlaceholder reports whether the element is typed as a placeholder.
func (d *Document) IsPlaceholder(id int) bool {
	return d.IsElement(id) && placeholderRe.MatchString(d.TypeOf(id))
}

func (d *Document) IsEntity(id int) bool {
	return d.IsElement(id) && d.HasTypeOf(id, TypeEntity)
}

func (d *Document) IsLanguageVariant(id int) bool {
	return d.IsElement(id) && d.HasTypeOf(id, TypeLanguageVariant)
}

// IsFragmentWrapper reports whether the element wraps a pre-built fragment.
func (d *Document) IsFragmentWrapper(id int) bool {
	return d.IsElement(id) && d.MatchTypeOf(id, func(t string) bool {
		return strings.HasPrefix(t, TypeDOMFragment)
	}) != ""
}

// TSRSpansTagDOM reports whether an element's tsr covers its whole subtree.
func (d *Document) TSRSpansTagDOM(id int) bool {
	if limitedTSRTags[d.Name(id)] || d.Info(id).LiteralHTML() {
		return false
	}
	return d.MatchTypeOf(id, limitedTSRRe.MatchString) == ""
}

// Link kinds.

func (d *Document) IsWikiLink(id int) bool {
	if d.Name(id) != "a" {
		return false
	}
	if d.AttrOr(id, "rel") == "mw:WikiLink" {
		return true
	}
	stx := d.Info(id).Stx
	return stx != "" && stx != "url" && stx != "magiclink"
}

func (d *Document) IsExtLink(id int) bool {
	if d.Name(id) != "a" || d.AttrOr(id, "rel") != "mw:ExtLink" {
		return false
	}
	stx := d.Info(id).Stx
	return stx != "url" && stx != "magiclink"
}

func (d *Document) IsURLLink(id int) bool {
	return d.Name(id) == "a" && d.AttrOr(id, "rel") == "mw:ExtLink" && d.Info(id).Stx == "url"
}

func (d *Document) IsMagicLink(id int) bool {
	return d.Name(id) == "a" && d.AttrOr(id, "rel") == "mw:ExtLink" && d.Info(id).Stx == "magiclink"
}

// HasExpandedAttrs reports whether the element's attributes came from an
// attribute-expansion pass.
func (d *Document) HasExpandedAttrs(id int) bool {
	return d.HasTypeOf(id, TypeExpandedAttrs)
}
