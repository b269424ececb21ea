package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Stored documents come from older releases and hand edited exports. Once the
// JSON syntax is valid, field values are read leniently: a value of the wrong
// kind decodes to its zero value instead of failing the whole document.

var errNotObject = errors.New("not a JSON object")

// decodeObject decodes the JSON object data into v after coercing the
// fields named in texts to strings and the fields named in flags to booleans.
func decodeObject(data []byte, v any, texts, flags []string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return errNotObject
	}
	for _, key := range texts {
		if raw, ok := obj[key]; ok {
			obj[key] = asText(raw)
		}
	}
	for _, key := range flags {
		if raw, ok := obj[key]; ok {
			obj[key] = asFlag(raw)
		}
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// asText turns a number or a boolean into its JSON string. Objects and arrays read as null.
func asText(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	switch raw[0] {
	case '"':
		return raw
	case '{', '[', 'n':
		return json.RawMessage("null")
	}
	text, _ := json.Marshal(string(raw))
	return text
}

// asFlag reads true, "true" and non zero numbers as true, anything else as false.
func asFlag(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("true")), bytes.Equal(raw, []byte(`"true"`)):
		return json.RawMessage("true")
	case len(raw) > 0 && raw[0] != '"' && !parseNum(raw).IsZero():
		return json.RawMessage("true")
	}
	return json.RawMessage("false")
}

// decodeList decodes a JSON array element by element. Elements that are not
// objects are dropped, a value that is not an array reads as nil.
func decodeList[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}
	list := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		list = append(list, v)
	}
	return list
}

func (p *Product) UnmarshalJSON(data []byte) error {
	type jproduct Product
	var j jproduct
	if err := decodeObject(data, &j, []string{"id", "name"}, []string{"active"}); err != nil {
		return err
	}
	*p = Product(j)
	return nil
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type jingredient Ingredient
	var j jingredient
	if err := decodeObject(data, &j, []string{"id", "name", "unit"}, nil); err != nil {
		return err
	}
	*i = Ingredient(j)
	return nil
}

func (s *Sale) UnmarshalJSON(data []byte) error {
	type jsale Sale
	var j jsale
	if err := decodeObject(data, &j, []string{"id", "productId", "notes"}, nil); err != nil {
		return err
	}
	*s = Sale(j)
	return nil
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	type jexpense Expense
	var j jexpense
	if err := decodeObject(data, &j, []string{"id", "category", "notes"}, nil); err != nil {
		return err
	}
	*e = Expense(j)
	return nil
}

// UnmarshalJSON reads each recipe on its own. A recipe that is not an
// object is dropped, quantities are read leniently.
func (r *Recipes) UnmarshalJSON(data []byte) error {
	var lines map[string]json.RawMessage
	if err := json.Unmarshal(data, &lines); err != nil {
		return errNotObject
	}
	if lines == nil {
		*r = nil
		return nil
	}
	recipes := make(Recipes, len(lines))
	for productID, raw := range lines {
		var line RecipeLine
		if err := json.Unmarshal(raw, &line); err != nil {
			continue
		}
		if line == nil {
			line = RecipeLine{}
		}
		recipes[productID] = line
	}
	*r = recipes
	return nil
}

// UnmarshalJSON reads the document field by field. Only a payload that is
// not a JSON object fails, a field of the wrong kind is left to backfill.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = Document{}
	if raw, ok := fields["version"]; ok {
		d.Version = int(parseNum(raw).IntPart())
	}
	d.Products = decodeList[Product](fields["products"])
	d.Ingredients = decodeList[Ingredient](fields["ingredients"])
	d.Sales = decodeList[Sale](fields["sales"])
	d.Expenses = decodeList[Expense](fields["expenses"])
	if raw, ok := fields["recipes"]; ok {
		_ = json.Unmarshal(raw, &d.Recipes)
	}
	if raw, ok := fields["meta"]; ok {
		_ = json.Unmarshal(raw, &d.Meta)
	}
	if raw, ok := fields["settings"]; ok {
		d.Settings = append(json.RawMessage(nil), raw...)
	}
	return nil
}
