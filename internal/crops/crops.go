package crops

import "sort"

// UnknownCrop is returned for class ids that have no entry in the table
const UnknownCrop = "Unknown crop"

// table maps classifier output ids to crop names
var table = map[int]string{
	1:  "Rice",
	2:  "Maize",
	3:  "Jute",
	4:  "Cotton",
	5:  "Coconut",
	6:  "Papaya",
	7:  "Orange",
	8:  "Apple",
	9:  "Muskmelon",
	10: "Watermelon",
	11: "Grapes",
	12: "Mango",
	13: "Banana",
	14: "Pomegranate",
	15: "Lentil",
	16: "Blackgram",
	17: "Mungbean",
	18: "Mothbeans",
	19: "Pigeonpeas",
	20: "Kidneybeans",
	21: "Chickpea",
	22: "Coffee",
}

// Crop is a single lookup table entry
type Crop struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Name returns the crop for a class id, or UnknownCrop
func Name(id int) string {
	if name, ok := table[id]; ok {
		return name
	}
	return UnknownCrop
}

// Known reports whether the class id is in the table
func Known(id int) bool {
	_, ok := table[id]
	return ok
}

// All returns every entry sorted by class id
func All() []Crop {
	list := make([]Crop, 0, len(table))
	for id, name := range table {
		list = append(list, Crop{ID: id, Name: name})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}
