package pagination

import "strconv"

// Continuation is the opaque cursor issued by the upstream API.
// A nil *Continuation means no further pages exist.
type Continuation struct {
	Offset int    `json:"sroffset"`
	Token  string `json:"continue,omitempty"`
}

// Param returns the offset in the form the upstream expects as a query parameter
func (c *Continuation) Param() string {
	if c == nil {
		return ""
	}
	return strconv.Itoa(c.Offset)
}
