package calendar

import (
	"net/url"
	"strconv"
)

// =============================================================================
// PAGE PARAM CASCADE
// =============================================================================
// Moving to another page of a unit invalidates every finer selection and the
// flat page number, so links drop those params.

// Cascade returns the params to drop when linking to another page of the unit
// at index: page params of all later units, then the flat page param.
func Cascade(units []*Unit, index int, flatParam string) []string {
	var names []string
	if index+1 < len(units) {
		names = make([]string, 0, len(units)-index)
		for _, u := range units[index+1:] {
			names = append(names, u.PageParam)
		}
	}
	return append(names, flatParam)
}

// DropParams returns a copy of in without names. in is not modified.
func DropParams(names []string, in url.Values) url.Values {
	out := make(url.Values, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	for _, name := range names {
		out.Del(name)
	}
	return out
}

// Dropped returns the cascade of the unit at index.
func (c *Chain) Dropped(index int) []string {
	return Cascade(c.Units, index, c.PageParam)
}

// LinkParams returns the query for page of the unit at index: in without the
// cascaded params and with the unit's own page param set.
func (c *Chain) LinkParams(index int, in url.Values, page int) url.Values {
	out := DropParams(c.Dropped(index), in)
	out.Set(c.Units[index].PageParam, strconv.Itoa(page))
	return out
}
