package entities

// Position is the top-left corner of an element on the page, in CSS pixels
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}
