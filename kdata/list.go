package kdata

import "strings"

// List is a comma separated list of ID:ORIGIN data types. It implements
// flag.Value.
type List []DataType

func (l *List) String() string {
	parts := make([]string, len(*l))
	for i, dt := range *l {
		parts[i] = dt.String()
	}
	return strings.Join(parts, ",")
}

func (l *List) Set(value string) error {
	var out List
	for _, part := range strings.Split(value, ",") {
		dt, err := ParseDataType(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		out = append(out, dt)
	}
	*l = out
	return nil
}
