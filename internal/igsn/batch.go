package igsn

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yungbote/igsnforms-backend/internal/types"
)

// Batch method keys carried in submitted data.
const (
	BatchMethodGrid     = "grid"
	BatchMethodGeometry = "geometry"
)

// BatchIndex is one child to create: the identifier suffix appended to the
// master IGSN, and an optional project-local label.
type BatchIndex struct {
	Suffix string
	Local  *string
}

// BatchStrategy derives the ordered child set from a parent deposition's
// accumulated form data. An empty result means "no batch", never an error.
type BatchStrategy interface {
	Compute(master *types.Deposition, data map[string]interface{}) []BatchIndex
}

var (
	strategyMu sync.RWMutex
	strategies = map[string]BatchStrategy{}
)

// RegisterStrategy installs a strategy under key, replacing any previous
// registration.
func RegisterStrategy(key string, s BatchStrategy) {
	strategyMu.Lock()
	defer strategyMu.Unlock()
	strategies[key] = s
}

// LookupStrategy resolves a batch method key.
func LookupStrategy(key string) (BatchStrategy, bool) {
	strategyMu.RLock()
	defer strategyMu.RUnlock()
	s, ok := strategies[key]
	return s, ok
}

func init() {
	RegisterStrategy(BatchMethodGrid, gridStrategy{})
	RegisterStrategy(BatchMethodGeometry, geometryStrategy{})
}

// gridStrategy expands substrate x row x column, substrate outer, column
// inner. Rows and columns are 1-indexed; local labels are not used.
type gridStrategy struct{}

func (gridStrategy) Compute(_ *types.Deposition, data map[string]interface{}) []BatchIndex {
	substrates := AsSlice(data["substrates"])
	rows := AsInt(data["subRows"])
	cols := AsInt(data["subCols"])
	if len(substrates) == 0 || rows <= 0 || cols <= 0 {
		return nil
	}
	indices := make([]BatchIndex, 0, len(substrates)*rows*cols)
	for _, substrate := range substrates {
		s := AsString(substrate)
		for r := 1; r <= rows; r++ {
			for c := 1; c <= cols; c++ {
				indices = append(indices, BatchIndex{
					Suffix: fmt.Sprintf("S%sR%dC%d", s, r, c),
				})
			}
		}
	}
	return indices
}

// geometryStrategy expands a list of build-geometry descriptors. Each child
// gets a local label {context}_{geometryType}_{NNN}{extra} where NNN restarts
// at 1 for each geometry, while the identifier suffix is the 3-digit global
// position across the whole batch. The dual counter is deliberate: labels
// number within a geometry, suffixes number the build plate.
type geometryStrategy struct{}

func (geometryStrategy) Compute(_ *types.Deposition, data map[string]interface{}) []BatchIndex {
	geometries := AsSlice(data["buildGeometries"])
	if len(geometries) == 0 {
		return nil
	}

	var contextParts []string
	for _, key := range []string{"runDate", "location", "material"} {
		if v := AsString(data[key]); v != "" {
			contextParts = append(contextParts, v)
		}
	}
	var extra strings.Builder
	for _, token := range AsSlice(data["extraInfo"]) {
		if v := AsString(token); v != "" {
			extra.WriteString("_")
			extra.WriteString(v)
		}
	}

	var indices []BatchIndex
	for _, raw := range geometries {
		geometry := AsMap(raw)
		if geometry == nil {
			continue
		}
		geometryType := AsString(geometry["buildGeometry"])
		if geometryType == "" {
			geometryType = AsString(geometry["geometryType"])
		}
		if geometryType == "" {
			continue
		}
		// Count defaults to 1 only when absent; an explicit 0 means no
		// children for this geometry.
		count := 1
		if raw, ok := geometry["count"]; ok {
			count = AsInt(raw)
		}
		if count <= 0 {
			continue
		}
		base := strings.Join(append(append([]string{}, contextParts...), geometryType), "_")
		for i := 1; i <= count; i++ {
			label := fmt.Sprintf("%s_%03d%s", base, i, extra.String())
			indices = append(indices, BatchIndex{
				Suffix: fmt.Sprintf("%03d", len(indices)+1),
				Local:  &label,
			})
		}
	}
	return indices
}
