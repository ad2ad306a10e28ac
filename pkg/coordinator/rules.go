package coordinator

import (
	"sync"

	"colstore.io/server/pkg/rule"
	"colstore.io/server/pkg/storage"
	"github.com/fagongzi/log"
)

// storageRuleSource reads rule chains from the catalog storage once per
// cycle. A datasource's chain is always followed by the cluster defaults,
// so a segment falls through to them before the coordinator's default fate
// applies.
type storageRuleSource struct {
	sync.RWMutex

	storage  storage.Storage
	byDS     map[string][]rule.Rule
	defaults []rule.Rule
}

// NewStorageRuleSource returns a rule source backed by the catalog storage
func NewStorageRuleSource(s storage.Storage) RuleSource {
	return &storageRuleSource{
		storage: s,
		byDS:    make(map[string][]rule.Rule),
	}
}

func (rs *storageRuleSource) Refresh() error {
	byDS := make(map[string][]rule.Rule)
	err := rs.storage.LoadRules(func(datasource string, data []byte) error {
		values, err := rule.ParseRules(data)
		if err != nil {
			// isolated to this datasource, its previous chain stays in use
			log.Errorf("rules: parse %s failed with %+v", datasource, err)
			rs.RLock()
			values = rs.byDS[datasource]
			rs.RUnlock()
		}

		byDS[datasource] = values
		return nil
	})
	if err != nil {
		return err
	}

	var defaults []rule.Rule
	data, err := rs.storage.DefaultRules()
	if err != nil {
		return err
	}
	if data != nil {
		defaults, err = rule.ParseRules(data)
		if err != nil {
			log.Errorf("rules: parse defaults failed with %+v", err)
			rs.RLock()
			defaults = rs.defaults
			rs.RUnlock()
		}
	}

	rs.Lock()
	rs.byDS = byDS
	rs.defaults = defaults
	rs.Unlock()
	return nil
}

func (rs *storageRuleSource) RulesFor(datasource string) []rule.Rule {
	rs.RLock()
	defer rs.RUnlock()

	values := make([]rule.Rule, 0, len(rs.byDS[datasource])+len(rs.defaults))
	values = append(values, rs.byDS[datasource]...)
	values = append(values, rs.defaults...)
	return values
}
