package kserde

import "strings"

var StringDeserializer = func(data []byte) (string, error) {
	return strings.TrimRight(string(data), "\x00"), nil
}

var StringSerializer = func(data string) ([]byte, error) {
	return []byte(data), nil
}

var String = Serde[string]{
	Serializer:   StringSerializer,
	Deserializer: StringDeserializer,
}

// FieldsDeserializer splits a blank separated list, e.g. the module list of
// a calibration update block.
var FieldsDeserializer = func(data []byte) ([]string, error) {
	s, err := StringDeserializer(data)
	if err != nil {
		return nil, err
	}
	return strings.Fields(s), nil
}

var FieldsSerializer = func(fields []string) ([]byte, error) {
	return []byte(strings.Join(fields, " ")), nil
}

var Fields = Serde[[]string]{
	Serializer:   FieldsSerializer,
	Deserializer: FieldsDeserializer,
}
