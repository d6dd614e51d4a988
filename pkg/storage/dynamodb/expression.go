package dynamodb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// expression accumulates the clauses, placeholders and values of an UpdateItem call.
// Every attribute name goes through a placeholder so reserved words such as
// "status" need no special casing.
type expression struct {
	sets       []string
	removes    []string
	adds       []string
	conditions []string

	names  map[string]string
	values map[string]types.AttributeValue
	alias  map[string]string
}

func newExpression() *expression {
	return &expression{
		names:  map[string]string{},
		values: map[string]types.AttributeValue{},
		alias:  map[string]string{},
	}
}

func (e *expression) name(attr string) string {
	if placeholder, ok := e.alias[attr]; ok {
		return placeholder
	}
	placeholder := fmt.Sprintf("#n%d", len(e.alias))
	e.alias[attr] = placeholder
	e.names[placeholder] = attr
	return placeholder
}

func (e *expression) value(v interface{}) (string, error) {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal expression value: %w", err)
	}
	placeholder := fmt.Sprintf(":v%d", len(e.values))
	e.values[placeholder] = av
	return placeholder, nil
}

func (e *expression) set(attr string, v interface{}) error {
	placeholder, err := e.value(v)
	if err != nil {
		return err
	}
	e.sets = append(e.sets, fmt.Sprintf("%s = %s", e.name(attr), placeholder))
	return nil
}

func (e *expression) remove(attr string) {
	e.removes = append(e.removes, e.name(attr))
}

func (e *expression) add(attr string, delta int64) error {
	placeholder, err := e.value(delta)
	if err != nil {
		return err
	}
	e.adds = append(e.adds, fmt.Sprintf("%s %s", e.name(attr), placeholder))
	return nil
}

// equals adds an "attr = value" precondition.
func (e *expression) equals(attr string, v interface{}) error {
	placeholder, err := e.value(v)
	if err != nil {
		return err
	}
	e.conditions = append(e.conditions, fmt.Sprintf("%s = %s", e.name(attr), placeholder))
	return nil
}

func (e *expression) condition(raw string) {
	e.conditions = append(e.conditions, raw)
}

func (e *expression) updateExpression() *string {
	var clauses []string
	if len(e.sets) > 0 {
		clauses = append(clauses, "SET "+strings.Join(e.sets, ", "))
	}
	if len(e.removes) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(e.removes, ", "))
	}
	if len(e.adds) > 0 {
		clauses = append(clauses, "ADD "+strings.Join(e.adds, ", "))
	}
	return aws.String(strings.Join(clauses, " "))
}

func (e *expression) conditionExpression() *string {
	if len(e.conditions) == 0 {
		return nil
	}
	return aws.String(strings.Join(e.conditions, " AND "))
}

func (e *expression) attributeNames() map[string]string {
	if len(e.names) == 0 {
		return nil
	}
	return e.names
}

func (e *expression) attributeValues() map[string]types.AttributeValue {
	if len(e.values) == 0 {
		return nil
	}
	return e.values
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
