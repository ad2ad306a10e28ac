package storage

import (
	"fmt"
)

var (
	segPrefix       = []byte("seg/")
	rulePrefix      = []byte("rule/ds/")
	defaultRulesKey = []byte("rule/default")
)

func segKey(id string) []byte {
	return []byte(fmt.Sprintf("seg/%s", id))
}

func ruleKey(datasource string) []byte {
	return []byte(fmt.Sprintf("rule/ds/%s", datasource))
}
