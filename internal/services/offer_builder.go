package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"feed-mapper-service/internal/models"
)

// ===== Marketplace attribute profile =====
//
// Source ids of the marketplace attributes the builder fills from offer tags
// directly, bypassing the mapping graph. These come from the destination
// marketplace schema and are stable across categories.

const (
	richContentAttributeSourceID = "11254"
	richContentAttributeName     = "Rich-контент JSON"

	// product type is assigned by the marketplace, never required from the feed
	typeAttributeSourceID = "8229"

	videoURLAttributeSourceID  = "21841"
	videoNameAttributeSourceID = "21837"
	videoComplexID             = 100001

	customsCodeNameSubstring = "ТН ВЭД"
)

var (
	modelYearParamName    = NormalizeAttributeName("Модельный год")
	modelYearIntParamName = modelYearParamName + " INT"
)

// directAttributeSourceIDs maps offer tag keys to the marketplace attributes
// they populate directly
var directAttributeSourceIDs = map[string][]string{
	"group":      {"8292", "10289"},
	"weight":     {"4497"},
	"length":     {"9454"},
	"width":      {"9455"},
	"height":     {"9456"},
	"model":      {"9048"},
	"annotation": {"4191"},
	"name":       {"4180"},
	"vendorCode": {"9024"},
}

// vatByCode translates feed VAT codes to marketplace rate strings
var vatByCode = map[string]string{
	"5": "0.0",
	"2": "0.1",
	"7": "0.2",
}

const defaultVATCode = "VAT_20"

var customsCodePattern = regexp.MustCompile(`\d[\d .]{2,}\d`)

// MarketAttributeInfo is the builder's view of one marketplace category
// attribute
type MarketAttributeInfo struct {
	Required     bool   `json:"required"`
	Disabled     bool   `json:"disabled"`
	DictionaryID int64  `json:"dictionaryId,omitempty"`
	Name         string `json:"name"`
}

// CustomsCodeValue is one dictionary value of a customs-code attribute,
// keyed in the snapshot by its extracted digit code
type CustomsCodeValue struct {
	Value             string `json:"value"`
	DictionaryValueID int64  `json:"dictionaryValueId"`
}

// BuilderSnapshot holds everything the builder needs for one category
// mapping. Built once, then shared read-only across offers and workers.
type BuilderSnapshot struct {
	CategoryMappingID uint
	CategorySourceID  string
	CategoryDeleted   bool

	AttributeMap AttributeMap
	UnitIndex    *UnitIndex

	// marketplace attribute source id -> metadata
	MarketAttributes map[string]MarketAttributeInfo

	// customs attribute source id -> extracted code -> dictionary value
	CustomsCodeValues map[string]map[string]CustomsCodeValue
}

// normalizeModelYearMappings moves non-dictionary model-year mappings to the
// derived integer param key, so a four-digit year reaches the marketplace
// even when the feed writes "23" or "2022-23". Runs once at snapshot build;
// the per-offer pass derives the matching values.
func (s *BuilderSnapshot) normalizeModelYearMappings() {
	entries, ok := s.AttributeMap[modelYearParamName]
	if !ok {
		return
	}
	for mappingID, entry := range entries {
		if entry.Values != nil {
			continue
		}
		if s.AttributeMap[modelYearIntParamName] == nil {
			s.AttributeMap[modelYearIntParamName] = make(map[uint]AttributeMapEntry)
		}
		s.AttributeMap[modelYearIntParamName][mappingID] = entry
		delete(entries, mappingID)
	}
}

// ParseDimensions parses an "L/W/H" centimeter string into three millimeter
// strings. Any malformed input yields zeros for all three.
func ParseDimensions(dimensions string) (length, width, height string, ok bool) {
	parts := strings.Split(strings.ReplaceAll(dimensions, ",", "."), "/")
	if len(parts) != 3 {
		return "0", "0", "0", false
	}
	values := make([]string, 3)
	for i, part := range parts {
		if part == "" {
			part = "0"
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return "0", "0", "0", false
		}
		values[i] = strconv.FormatInt(int64(f*10), 10)
	}
	return values[0], values[1], values[2], true
}

// ProcessVideoURL canonicalizes video links: a bare code becomes a full
// YouTube watch URL, and both long and shortened YouTube forms are rewritten
// to the canonical full URL.
func ProcessVideoURL(url string) string {
	const (
		baseURL        = "youtube.com/watch?v="
		baseURLFull    = "https://www.youtube.com/watch?v="
		shortenBaseURL = "youtu.be/"
	)

	if !strings.Contains(url, ".") {
		return baseURLFull + url
	}
	if idx := strings.Index(url, baseURL); idx >= 0 {
		return baseURLFull + url[idx+len(baseURL):]
	}
	if idx := strings.Index(url, shortenBaseURL); idx >= 0 {
		return baseURLFull + url[idx+len(shortenBaseURL):]
	}
	return url
}

// extractCustomsCode pulls the digit sequence out of a customs dictionary
// value like "8471 30 000 0 — computing machines"
func extractCustomsCode(value string) string {
	match := customsCodePattern.FindString(value)
	if match == "" {
		return ""
	}
	return strings.ReplaceAll(match, " ", "")
}

// offerBuild is the per-offer accumulator. A fresh value per offer keeps the
// builder safe under the worker pool.
type offerBuild struct {
	snapshot *BuilderSnapshot

	values     map[int64]*models.AttributePayload
	valueOrder []int64

	complexValues map[int64]map[int64]*models.AttributePayload
	complexOrder  []int64

	required   []string
	attrErrors map[string]string
	tagErrors  map[string]string

	feedParams  map[string][]string
	paramsOrder []string
}

// BuildOffer translates one feed offer into a marketplace-shaped payload
// with a readiness verdict
func BuildOffer(snapshot *BuilderSnapshot, offer *models.Offer) *models.BuiltOffer {
	b := &offerBuild{
		snapshot:      snapshot,
		values:        make(map[int64]*models.AttributePayload),
		complexValues: make(map[int64]map[int64]*models.AttributePayload),
		attrErrors:    make(map[string]string),
		tagErrors:     make(map[string]string),
		feedParams:    make(map[string][]string),
	}

	for _, sourceID := range sortedAttributeSourceIDs(snapshot.MarketAttributes) {
		if snapshot.MarketAttributes[sourceID].Required {
			b.required = append(b.required, sourceID)
		}
	}

	name := offer.TagName
	if name == "" {
		name = offer.Name
	}
	if name == "" {
		name = offer.Model
	}
	if name == "" {
		b.tagErrors["@name/name/model"] = "missing"
	}
	validName := RemoveProhibitedCharacters(name)

	depth, width, height := "0", "0", "0"
	if offer.Dimensions == "" {
		b.tagErrors["dimensions"] = "missing"
	} else {
		var ok bool
		depth, width, height, ok = ParseDimensions(offer.Dimensions)
		if !ok {
			b.tagErrors["dimensions"] = "bad_value"
		}
	}

	weight := offer.Weight
	if weight == "" {
		weight = "0"
	}
	if grams, err := strconv.ParseFloat(strings.ReplaceAll(weight, ",", "."), 64); err == nil {
		weight = strconv.FormatFloat(grams*1000, 'f', -1, 64)
	} else {
		b.tagErrors["weight"] = "bad_value"
	}

	if len(offer.Pictures) == 0 {
		b.tagErrors["picture"] = "missing"
	} else if offer.Pictures[0] == "" {
		b.tagErrors["picture"] = "empty"
	}

	if offer.Price == "" {
		b.tagErrors["price"] = "missing"
	}

	var images360 []string
	if offer.Images360 != "" {
		images360 = strings.Split(offer.Images360, ",")
	}

	b.collectAttributes(offer)

	vat := offer.VAT
	if vat == "" {
		vat = defaultVATCode
	}
	if vat == "NO_VAT" {
		vat = "0"
	} else if rate, ok := vatByCode[vat]; ok {
		vat = rate
	} else {
		parts := strings.Split(vat, "_")
		if percent, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			vat = strconv.FormatFloat(float64(percent)/100, 'f', -1, 64)
		} else {
			b.tagErrors["vat"] = "bad_value"
		}
	}

	if snapshot.CategoryDeleted {
		b.tagErrors["category"] = "mapped_with_deleted"
	}

	// the marketplace refuses a video URL without a display name
	videoComplex := b.complexValues[videoComplexID]
	if videoComplex != nil {
		urlID := mustParseSourceID(videoURLAttributeSourceID)
		nameID := mustParseSourceID(videoNameAttributeSourceID)
		if _, hasURL := videoComplex[urlID]; hasURL {
			if _, hasName := videoComplex[nameID]; !hasName {
				b.addComplexAttributeValue(videoNameAttributeSourceID, validName, videoComplexID)
			}
		}
	}

	var secondary []string
	if len(offer.Pictures) > 1 {
		limit := len(offer.Pictures)
		if limit > 15 {
			limit = 15
		}
		secondary = offer.Pictures[1:limit]
	}
	primary := ""
	if len(offer.Pictures) > 0 {
		primary = offer.Pictures[0]
	}

	built := &models.BuiltOffer{
		OfferID:           offer.OfferID,
		CategorySourceID:  snapshot.CategorySourceID,
		Name:              validName,
		Depth:             depth,
		Width:             width,
		Height:            height,
		DimensionUnit:     "mm",
		Weight:            weight,
		WeightUnit:        "g",
		Barcode:           offer.Barcode,
		Price:             offer.Price,
		OldPrice:          offer.OldPrice,
		VAT:               vat,
		PrimaryImage:      primary,
		Images:            secondary,
		Images360:         images360,
		Attributes:        b.attributePayloads(),
		ComplexAttributes: b.complexAttributePayloads(),
		AttributeErrors:   b.attrErrors,
		TagErrors:         b.tagErrors,
		Ready:             len(b.required) == 0 && len(b.tagErrors) == 0,
	}
	return built
}

// collectAttributes fills the attribute payloads from the offer's params and
// tags, consuming required attributes as they are satisfied
func (b *offerBuild) collectAttributes(offer *models.Offer) {
	b.collectFeedParams(offer)

	params := make([]ParamValues, 0, len(b.paramsOrder))
	for _, name := range b.paramsOrder {
		params = append(params, ParamValues{Name: name, Values: b.feedParams[name]})
	}

	resolved := ResolveValues(b.snapshot.AttributeMap, b.snapshot.UnitIndex, params)

	for _, attrName := range resolved.Order {
		for _, valueData := range resolved.Values[attrName] {
			if valueData.AttributeSourceID == videoURLAttributeSourceID || valueData.AttributeSourceID == videoNameAttributeSourceID {
				value := valueData.Value
				if valueData.AttributeSourceID == videoURLAttributeSourceID {
					value = ProcessVideoURL(value)
				}
				b.addComplexAttributeValue(valueData.AttributeSourceID, value, videoComplexID)
				continue
			}

			value := valueData.Value
			if valueData.DictionaryValueID == 0 && !valueData.IsRichContent && !valueData.IgnoreDataType {
				converted, err := convertAttributeValue(value, valueData.DataType)
				if err != nil {
					b.addError(valueData.AttributeSourceID, "bad_value")
					break
				}
				value = converted
			}
			b.addAttributeValue(valueData.AttributeSourceID, value, valueData.DictionaryValueID)
		}
	}

	for _, sourceID := range resolved.MappedWithDeletedValue {
		b.addError(sourceID, "mapped_with_deleted_value")
	}
	for _, sourceID := range resolved.UnmappedValueAttributes {
		b.addError(sourceID, "unmapped_val")
	}
	for _, sourceID := range resolved.EmptyValueAttributes {
		b.addError(sourceID, "empty")
	}
	for _, sourceID := range resolved.TypeErrorAttributes {
		b.addError(sourceID, "bad_value")
	}

	name := offer.Name
	if name == "" && offer.TypePrefix != "" && offer.Vendor != "" && offer.Model != "" {
		name = strings.Join([]string{offer.TypePrefix, offer.Vendor, offer.Model}, " ")
	}
	b.addDirectAttribute("name", name, name == "")

	b.addDirectAttribute("vendorCode", offer.VendorCode, offer.VendorCode == "")

	group := offer.GroupID
	if group == "" {
		group = fmt.Sprintf("b2b-%s", offer.OfferID)
	}
	b.addDirectAttribute("group", group, false)

	length, width, height, _ := ParseDimensions(offer.Dimensions)
	b.addDirectAttribute("length", length, false)
	b.addDirectAttribute("width", width, false)
	b.addDirectAttribute("height", height, false)

	rawWeight := offer.Weight
	if rawWeight == "" {
		rawWeight = "0"
	}
	if kg, err := strconv.ParseFloat(strings.ReplaceAll(rawWeight, ",", "."), 64); err == nil {
		b.addDirectAttribute("weight", strconv.FormatFloat(kg*1000, 'f', -1, 64), false)
	} else {
		weightSourceID := directAttributeSourceIDs["weight"][0]
		if b.isRequired(weightSourceID) {
			b.attrErrors[weightSourceID] = "bad_value"
		}
	}

	b.addDirectAttribute("model", offer.Model, offer.Model == "")

	if offer.Description != "" {
		b.addDirectAttribute("annotation", SanitizeDescription(offer.Description), false)
	}

	b.addCustomsCodes(offer.CustomsCodes)

	// never demanded from the feed, the marketplace derives it
	b.removeRequired(typeAttributeSourceID)

	b.consolidateRequiredErrors()
}

// collectFeedParams merges the offer's param list and its scalar tags into
// one ordered name -> values view
func (b *offerBuild) collectFeedParams(offer *models.Offer) {
	for _, param := range offer.Params {
		b.addFeedParam(NormalizeAttributeName(param.Name), strings.TrimSpace(param.Value))
	}

	tags := []struct {
		name  string
		value string
	}{
		{"@id", offer.OfferID},
		{"@group_id", offer.GroupID},
		{"name", offer.Name},
		{"model", offer.Model},
		{"typePrefix", offer.TypePrefix},
		{"vendor", offer.Vendor},
		{"vendorCode", offer.VendorCode},
		{"description", offer.Description},
		{"barcode", offer.Barcode},
		{"dimensions", offer.Dimensions},
		{"weight", offer.Weight},
		{"price", offer.Price},
		{"oldprice", offer.OldPrice},
		{"vat", offer.VAT},
		{"images360", offer.Images360},
	}
	for _, tag := range tags {
		if tag.value == "" {
			continue
		}
		b.addFeedParam(strings.ToUpper(strings.TrimSpace(tag.name)), strings.TrimSpace(tag.value))
	}

	// derive a four-digit model year the integer attribute accepts from
	// spellings like "23" or "2022-23"
	if years, ok := b.feedParams[modelYearParamName]; ok {
		derived := make([]string, 0, len(years))
		for _, year := range years {
			parts := strings.Split(year, "-")
			full := "20" + parts[len(parts)-1]
			if len(full) > 4 {
				full = full[len(full)-4:]
			}
			derived = append(derived, full)
		}
		for _, year := range derived {
			b.addFeedParam(modelYearIntParamName, year)
		}
	}
}

func (b *offerBuild) addFeedParam(name, value string) {
	if _, ok := b.feedParams[name]; !ok {
		b.paramsOrder = append(b.paramsOrder, name)
	}
	b.feedParams[name] = append(b.feedParams[name], value)
}

// addDirectAttribute fills a tag-sourced marketplace attribute when the
// category defines it. A missing value on a required attribute records the
// error instead.
func (b *offerBuild) addDirectAttribute(key, value string, missing bool) {
	for _, sourceID := range directAttributeSourceIDs[key] {
		if _, ok := b.snapshot.MarketAttributes[sourceID]; !ok {
			continue
		}
		if missing {
			b.addError(sourceID, "missing")
			return
		}
		if value == "" {
			b.addError(sourceID, "empty")
		}
		b.addAttributeValue(sourceID, value, 0)
	}
}

// addCustomsCodes matches the offer's customs codes against the dictionary
// of every customs attribute by longest prefix, falling back from a 3-digit
// remainder to its "XX00" 4-digit form
func (b *offerBuild) addCustomsCodes(codes []string) {
	for _, sourceID := range sortedCustomsAttributeIDs(b.snapshot.CustomsCodeValues) {
		valuesByCode := b.snapshot.CustomsCodeValues[sourceID]

		for _, code := range codes {
			part := code
			found := false
			for len(part) >= 4 {
				if match, ok := valuesByCode[part]; ok {
					b.addAttributeValue(sourceID, match.Value, match.DictionaryValueID)
					found = true
					break
				}
				part = part[:len(part)-1]
			}
			if !found {
				prefix := code
				if len(prefix) > 4 {
					prefix = prefix[:4]
				}
				if match, ok := valuesByCode[prefix+"00"]; ok {
					b.addAttributeValue(sourceID, match.Value, match.DictionaryValueID)
				}
			}
		}
	}

	for sourceID := range b.snapshot.CustomsCodeValues {
		if !b.isRequired(sourceID) {
			continue
		}
		if len(codes) == 0 {
			b.attrErrors[sourceID] = "missing"
		} else {
			b.attrErrors[sourceID] = "not_found"
		}
	}
}

// consolidateRequiredErrors assigns a final error code to every required
// attribute the build could not satisfy
func (b *offerBuild) consolidateRequiredErrors() {
	sourceToFeedName := make(map[string]string)
	for attrName, entries := range b.snapshot.AttributeMap {
		for _, entry := range entries {
			sourceToFeedName[entry.SourceID] = attrName
		}
	}

	for _, sourceID := range b.required {
		if _, done := b.attrErrors[sourceID]; done {
			continue
		}
		info := b.snapshot.MarketAttributes[sourceID]
		if info.Disabled {
			b.attrErrors[sourceID] = "logical"
			continue
		}
		feedName, mapped := sourceToFeedName[sourceID]
		if !mapped {
			b.attrErrors[sourceID] = "unmapped"
			continue
		}
		if _, present := b.feedParams[feedName]; !present {
			b.attrErrors[sourceID] = "missing"
			continue
		}
		b.attrErrors[sourceID] = "unknown err"
	}
}

func (b *offerBuild) addAttributeValue(sourceID string, value string, dictionaryValueID int64) {
	id := mustParseSourceID(sourceID)
	payload, ok := b.values[id]
	if !ok {
		payload = &models.AttributePayload{ID: id, Values: []models.AttributeValuePayload{}}
		b.values[id] = payload
		b.valueOrder = append(b.valueOrder, id)
	}
	payload.Values = append(payload.Values, models.AttributeValuePayload{
		Value:             value,
		DictionaryValueID: dictionaryValueID,
	})
	b.removeRequired(sourceID)
}

func (b *offerBuild) addComplexAttributeValue(sourceID string, value string, complexID int64) {
	id := mustParseSourceID(sourceID)
	group, ok := b.complexValues[complexID]
	if !ok {
		group = make(map[int64]*models.AttributePayload)
		b.complexValues[complexID] = group
		b.complexOrder = append(b.complexOrder, complexID)
	}
	payload, ok := group[id]
	if !ok {
		payload = &models.AttributePayload{ID: id, ComplexID: complexID, Values: []models.AttributeValuePayload{}}
		group[id] = payload
	}
	payload.Values = append(payload.Values, models.AttributeValuePayload{Value: value})
	b.removeRequired(sourceID)
}

// addError records an error only for attributes the category requires
func (b *offerBuild) addError(sourceID, code string) {
	info, ok := b.snapshot.MarketAttributes[sourceID]
	if !ok || !info.Required {
		return
	}
	b.attrErrors[sourceID] = code
}

func (b *offerBuild) isRequired(sourceID string) bool {
	for _, id := range b.required {
		if id == sourceID {
			return true
		}
	}
	return false
}

func (b *offerBuild) removeRequired(sourceID string) {
	filtered := b.required[:0]
	for _, id := range b.required {
		if id != sourceID {
			filtered = append(filtered, id)
		}
	}
	b.required = filtered
}

func (b *offerBuild) attributePayloads() []models.AttributePayload {
	payloads := make([]models.AttributePayload, 0, len(b.valueOrder))
	for _, id := range b.valueOrder {
		payloads = append(payloads, *b.values[id])
	}
	return payloads
}

func (b *offerBuild) complexAttributePayloads() []models.ComplexAttributePayload {
	payloads := make([]models.ComplexAttributePayload, 0, len(b.complexOrder))
	for _, complexID := range b.complexOrder {
		group := b.complexValues[complexID]
		ids := make([]int64, 0, len(group))
		for id := range group {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		attrs := make([]models.AttributePayload, 0, len(ids))
		for _, id := range ids {
			attrs = append(attrs, *group[id])
		}
		payloads = append(payloads, models.ComplexAttributePayload{Attributes: attrs})
	}
	return payloads
}

// convertAttributeValue coerces a free-text value to the declared data type
func convertAttributeValue(value string, dataType models.AttributeDataType) (string, error) {
	switch dataType {
	case models.DataTypeDecimal:
		f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case models.DataTypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return RemoveProhibitedCharacters(value), nil
	}
}

// mustParseSourceID converts a marketplace attribute source id to the
// numeric form the import API expects. Source ids are numeric by contract.
func mustParseSourceID(sourceID string) int64 {
	id, _ := strconv.ParseInt(sourceID, 10, 64)
	return id
}

func sortedAttributeSourceIDs(attributes map[string]MarketAttributeInfo) []string {
	ids := make([]string, 0, len(attributes))
	for id := range attributes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedCustomsAttributeIDs(values map[string]map[string]CustomsCodeValue) []string {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
