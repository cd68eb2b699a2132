package models

// Province is an entry of the country/province select
type Province struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Cities []City `json:"ciudades"`
}

// City belongs to exactly one province
type City struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProvinceID string `json:"id_provincia"`
}

// FindProvince returns the province with the given id
func FindProvince(provinces []Province, id string) (Province, bool) {
	for _, p := range provinces {
		if p.ID == id {
			return p, true
		}
	}
	return Province{}, false
}
