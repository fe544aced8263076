package domain

import "sort"

type DeliveryType string

const (
	DeliveryRapid  DeliveryType = "rapid"
	DeliveryNormal DeliveryType = "normal"
)

type DeliveryOption struct {
	Price int64  `json:"price"`
	Label string `json:"label"`
}

// Zone is a delivery-pricing region.
type Zone struct {
	Key      string                          `json:"key"`
	Name     string                          `json:"name"`
	Areas    []string                        `json:"areas"`
	Delivery map[DeliveryType]DeliveryOption `json:"delivery"`
}

var zones = map[string]Zone{
	"abidjan-nord": {
		Key:   "abidjan-nord",
		Name:  "Abidjan Nord",
		Areas: []string{"Plateau", "Cocody", "Adjame", "Abobo", "Yopougon"},
		Delivery: map[DeliveryType]DeliveryOption{
			DeliveryRapid:  {Price: 2000, Label: "Livraison rapide (24h)"},
			DeliveryNormal: {Price: 1000, Label: "Livraison normale (48-72h)"},
		},
	},
	"abidjan-sud": {
		Key:   "abidjan-sud",
		Name:  "Abidjan Sud",
		Areas: []string{"Marcory", "Koumassi", "Port Bouet"},
		Delivery: map[DeliveryType]DeliveryOption{
			DeliveryRapid:  {Price: 2500, Label: "Livraison rapide (24h)"},
			DeliveryNormal: {Price: 1500, Label: "Livraison normale (48-72h)"},
		},
	},
	"hors-zone": {
		Key:   "hors-zone",
		Name:  "Hors zone",
		Areas: []string{"Autre ville"},
		Delivery: map[DeliveryType]DeliveryOption{
			DeliveryNormal: {Price: 5000, Label: "Livraison (3-5 jours)"},
		},
	},
}

func LookupZone(key string) (Zone, bool) {
	z, ok := zones[key]
	return z, ok
}

// Zones returns the table sorted by key.
func Zones() []Zone {
	out := make([]Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Fee returns the delivery price for the option, if the zone offers it.
func (z Zone) Fee(t DeliveryType) (int64, bool) {
	opt, ok := z.Delivery[t]
	return opt.Price, ok
}

func (z Zone) HasArea(area string) bool {
	for _, a := range z.Areas {
		if a == area {
			return true
		}
	}
	return false
}
