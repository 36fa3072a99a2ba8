package providers

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexText nimmt ein JSON-Feld auf, das je nach Datensatz ein String oder ein Objekt ist
// (z.B. CORE `language` oder `journal`). Objekte werden über name, code, title, identifiers
// und zuletzt als rohes JSON auf einen String reduziert.
type FlexText string

func (f *FlexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexText(s)
	case '{':
		var obj struct {
			Name        string   `json:"name"`
			Code        string   `json:"code"`
			Title       string   `json:"title"`
			Identifiers []string `json:"identifiers"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.Name != "":
			*f = FlexText(obj.Name)
		case obj.Code != "":
			*f = FlexText(obj.Code)
		case obj.Title != "":
			*f = FlexText(obj.Title)
		case len(obj.Identifiers) > 0:
			*f = FlexText(obj.Identifiers[0])
		default:
			*f = FlexText(compact(data))
		}
	case '[':
		var items []FlexText
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*f = ""
		for _, item := range items {
			if item != "" {
				*f = item
				break
			}
		}
	default:
		*f = FlexText(compact(data))
	}
	return nil
}

func (f FlexText) String() string {
	return string(f)
}

// FlexInt nimmt Zahlen auf, die als Zahl oder als String geliefert werden
// (YouTube liefert Statistiken als Strings).
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// Unlesbare Zähler werden wie fehlende behandelt.
			*n = 0
			return nil
		}
		*n = FlexInt(v)
		return nil
	}
	var v json.Number
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	i, err := v.Int64()
	if err != nil {
		fl, ferr := v.Float64()
		if ferr != nil {
			return ferr
		}
		i = int64(fl)
	}
	*n = FlexInt(i)
	return nil
}

func compact(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

// FlexList ist eine Liste, deren Einträge Strings oder Objekte sein können.
// Ein einzelner Wert statt eines Arrays wird als Liste mit einem Eintrag gelesen.
type FlexList []string

func (l *FlexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		var single FlexText
		if err := single.UnmarshalJSON(data); err != nil {
			return err
		}
		*l = nil
		if single != "" {
			*l = FlexList{string(single)}
		}
		return nil
	}
	var items []FlexText
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(FlexList, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, string(item))
		}
	}
	*l = out
	return nil
}
