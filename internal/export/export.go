// Package export renders stored records as downloadable CSV or XLSX files.
package export

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"invoiceapi/internal/model"
)

var (
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrConversion      = errors.New("csv conversion failed")
	ErrUnsupportedType = errors.New("unsupported content type")
)

type format int

const (
	formatJSON format = iota
	formatCSV
)

// formatOf trusts the content-type tag written with the object. Untagged objects
// fall back to the key's extension.
func formatOf(obj model.StoredObject) (format, error) {
	mt := ""
	if obj.ContentType != "" {
		parsed, _, err := mime.ParseMediaType(obj.ContentType)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, obj.ContentType)
		}
		mt = parsed
	}
	switch mt {
	case model.ContentTypeCSV:
		return formatCSV, nil
	case model.ContentTypeJSON:
		return formatJSON, nil
	case "", model.ContentTypeBinary:
		if strings.EqualFold(path.Ext(obj.Key), ".csv") {
			return formatCSV, nil
		}
		return formatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, obj.ContentType)
	}
}

// ToCSV returns obj as CSV along with the download filename. The filename is
// the last element of the object key, so "records/a.csv" downloads as "a.csv"
// and namespace prefixes never reach Content-Disposition. CSV objects are
// returned byte-identical under that name; JSON objects are converted and a
// .json suffix becomes .csv.
func ToCSV(obj model.StoredObject) ([]byte, string, error) {
	f, err := formatOf(obj)
	if err != nil {
		return nil, "", err
	}
	name := path.Base(obj.Key)
	if f == formatCSV {
		return obj.Content, name, nil
	}
	t, err := tableFromJSON(obj.Content)
	if err != nil {
		return nil, "", err
	}
	out, err := writeCSV(t)
	if err != nil {
		return nil, "", err
	}
	return out, replaceExt(name, ".json", ".csv"), nil
}

// ToXLSX returns obj as a single-sheet workbook and its download filename.
func ToXLSX(obj model.StoredObject) ([]byte, string, error) {
	f, err := formatOf(obj)
	if err != nil {
		return nil, "", err
	}
	var t Table
	if f == formatCSV {
		t, err = tableFromCSV(obj.Content)
	} else {
		t, err = tableFromJSON(obj.Content)
	}
	if err != nil {
		return nil, "", err
	}
	out, err := writeXLSX(t)
	if err != nil {
		return nil, "", err
	}
	name := path.Base(obj.Key)
	name = strings.TrimSuffix(name, path.Ext(name)) + ".xlsx"
	return out, name, nil
}

func replaceExt(name, from, to string) string {
	if strings.HasSuffix(name, from) {
		return strings.TrimSuffix(name, from) + to
	}
	return name
}
