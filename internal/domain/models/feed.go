package models

import "github.com/mamadbah2/dairyfeed/pkg/numutil"

// FeedSource tags where a feed record originated.
type FeedSource string

const (
	FeedSourceStandard FeedSource = "standard"
	FeedSourceCustom   FeedSource = "custom"
)

// RawFeedDocument is the storage shape of a feed ingredient. Nutrient values
// are kept as strings because both the standard catalog and bulk-imported
// custom feeds arrive with mixed formatting (blank cells, "NaN", locale
// artifacts).
type RawFeedDocument struct {
	ID       string     `bson:"_id" json:"id"`
	OrgID    string     `bson:"org_id,omitempty" json:"org_id,omitempty"`
	Code     string     `bson:"code" json:"code"`
	Name     string     `bson:"name" json:"name"`
	Category string     `bson:"category" json:"category"`
	Type     string     `bson:"type" json:"type"`
	Source   FeedSource `bson:"source" json:"source"`

	DryMatterPct  string `bson:"dm_pct" json:"dm_pct"`
	Ash           string `bson:"ash" json:"ash"`
	CrudeProtein  string `bson:"cp" json:"cp"`
	EtherExtract  string `bson:"ee" json:"ee"`
	CrudeFiber    string `bson:"cf" json:"cf"`
	NFE           string `bson:"nfe" json:"nfe"`
	Starch        string `bson:"starch" json:"starch"`
	NDF           string `bson:"ndf" json:"ndf"`
	Hemicellulose string `bson:"hemicellulose" json:"hemicellulose"`
	ADF           string `bson:"adf" json:"adf"`
	Cellulose     string `bson:"cellulose" json:"cellulose"`
	Lignin        string `bson:"lignin" json:"lignin"`
	NDIN          string `bson:"ndin" json:"ndin"`
	ADIN          string `bson:"adin" json:"adin"`
	Calcium       string `bson:"ca" json:"ca"`
	Phosphorus    string `bson:"p" json:"p"`
}

// FeedRecord is the normalized, numeric snapshot consumed by the calculation
// pipeline. Every nutrient field is a non-negative float; unparseable source
// values have been coerced to 0.
type FeedRecord struct {
	ID       string     `json:"id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Type     string     `json:"type"`
	Source   FeedSource `json:"source"`

	DryMatterPct  float64 `json:"dm_pct"`
	Ash           float64 `json:"ash"`
	CrudeProtein  float64 `json:"cp"`
	EtherExtract  float64 `json:"ee"`
	CrudeFiber    float64 `json:"cf"`
	NFE           float64 `json:"nfe"`
	Starch        float64 `json:"starch"`
	NDF           float64 `json:"ndf"`
	Hemicellulose float64 `json:"hemicellulose"`
	ADF           float64 `json:"adf"`
	Cellulose     float64 `json:"cellulose"`
	Lignin        float64 `json:"lignin"`
	NDIN          float64 `json:"ndin"`
	ADIN          float64 `json:"adin"`
	Calcium       float64 `json:"ca"`
	Phosphorus    float64 `json:"p"`
}

// IsForage reports whether the feed counts toward forage NDF supply.
func (f FeedRecord) IsForage() bool {
	return f.Category == "forage"
}

// Normalize coerces every nutrient string of a raw document to a float,
// substituting 0.0 for anything a cell parser would choke on. Negative values
// are clamped to zero to keep the non-negativity invariant.
func (d RawFeedDocument) Normalize() FeedRecord {
	nn := func(raw string) float64 {
		v := numutil.FloatOrZero(raw)
		if v < 0 {
			return 0
		}
		return v
	}

	return FeedRecord{
		ID:       d.ID,
		Code:     d.Code,
		Name:     d.Name,
		Category: d.Category,
		Type:     d.Type,
		Source:   d.Source,

		DryMatterPct:  nn(d.DryMatterPct),
		Ash:           nn(d.Ash),
		CrudeProtein:  nn(d.CrudeProtein),
		EtherExtract:  nn(d.EtherExtract),
		CrudeFiber:    nn(d.CrudeFiber),
		NFE:           nn(d.NFE),
		Starch:        nn(d.Starch),
		NDF:           nn(d.NDF),
		Hemicellulose: nn(d.Hemicellulose),
		ADF:           nn(d.ADF),
		Cellulose:     nn(d.Cellulose),
		Lignin:        nn(d.Lignin),
		NDIN:          nn(d.NDIN),
		ADIN:          nn(d.ADIN),
		Calcium:       nn(d.Calcium),
		Phosphorus:    nn(d.Phosphorus),
	}
}
