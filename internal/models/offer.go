package models

// OfferParam is a single name/value pair from an offer's param list.
// Unit is the symbol printed next to the value in the feed, when present.
type OfferParam struct {
	Name  string `json:"name" binding:"required"`
	Unit  string `json:"unit,omitempty"`
	Value string `json:"value"`
}

// Offer is the feed-side representation of a product handed to the builder.
// Field names follow the feed file vocabulary.
type Offer struct {
	OfferID    string `json:"offerId" binding:"required"`
	GroupID    string `json:"groupId,omitempty"`
	CategoryID string `json:"categoryId" binding:"required"`
	Available  bool   `json:"available"`

	Name       string `json:"name,omitempty"`
	TagName    string `json:"tagName,omitempty"` // the @name tag variant, takes priority over Name
	Model      string `json:"model,omitempty"`
	TypePrefix string `json:"typePrefix,omitempty"`
	Vendor     string `json:"vendor,omitempty"`
	VendorCode string `json:"vendorCode,omitempty"`

	Description string   `json:"description,omitempty"`
	Pictures    []string `json:"pictures,omitempty"`
	Images360   string   `json:"images360,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`

	// "L/W/H" in centimeters, comma or dot decimals
	Dimensions string `json:"dimensions,omitempty"`
	// Kilograms, comma or dot decimals
	Weight string `json:"weight,omitempty"`

	// Prices in the feed currency, kept as text the way the feed writes them
	Price    string `json:"price,omitempty"`
	OldPrice string `json:"oldPrice,omitempty"`

	VAT string `json:"vat,omitempty"`

	// Customs (HS) codes declared on the offer
	CustomsCodes []string `json:"customsCodes,omitempty"`

	Params []OfferParam `json:"params,omitempty"`
}

// AttributeValuePayload is one value of a marketplace attribute in the
// submission payload. DictionaryValueID is 0 for free-text values.
type AttributeValuePayload struct {
	Value             string `json:"value"`
	DictionaryValueID int64  `json:"dictionary_value_id"`
}

// AttributePayload is a marketplace attribute with its resolved values,
// shaped for the marketplace item-import API.
type AttributePayload struct {
	ID        int64                   `json:"id"`
	ComplexID int64                   `json:"complex_id,omitempty"`
	Values    []AttributeValuePayload `json:"values"`
}

// ComplexAttributePayload groups the attributes of one complex (for example
// a video: URL plus display name) the way the import API nests them
type ComplexAttributePayload struct {
	Attributes []AttributePayload `json:"attributes"`
}

// BuiltOffer is the builder's verdict for one offer: the marketplace-shaped
// payload plus the per-attribute and per-tag error maps.
type BuiltOffer struct {
	OfferID          string `json:"offerId"`
	CategorySourceID string `json:"categorySourceId,omitempty"`

	Name          string   `json:"name,omitempty"`
	Depth         string   `json:"depth"`
	Width         string   `json:"width"`
	Height        string   `json:"height"`
	DimensionUnit string   `json:"dimensionUnit"`
	Weight        string   `json:"weight"`
	WeightUnit    string   `json:"weightUnit"`
	Barcode       string   `json:"barcode,omitempty"`
	Price         string   `json:"price,omitempty"`
	OldPrice      string   `json:"oldPrice,omitempty"`
	VAT           string   `json:"vat"`
	PrimaryImage  string   `json:"primaryImage,omitempty"`
	Images        []string `json:"images,omitempty"`
	Images360     []string `json:"images360,omitempty"`

	Attributes        []AttributePayload        `json:"attributes"`
	ComplexAttributes []ComplexAttributePayload `json:"complexAttributes,omitempty"`

	// Attribute source id -> error code (missing, unmapped, logical, ...)
	AttributeErrors map[string]string `json:"attributeErrors,omitempty"`
	// Tag name -> error code for fields sourced from offer tags
	TagErrors map[string]string `json:"tagErrors,omitempty"`

	Ready bool `json:"ready"`
}
