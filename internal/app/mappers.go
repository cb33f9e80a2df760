package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"shelter_board/internal/domain"
)

/********** alias registries (single source of truth) **********/

// The upstream backend is loosely versioned; older deployments still emit
// the flat legacy field names.

var kennelAliases = map[string][]string{
	"id":       {"kennel_id", "id"},
	"name":     {"kennel_name", "name"},
	"code":     {"kennel_code", "code", "short_code"},
	"capacity": {"capacity", "max_occupants", "slots"},
}

var stayAliases = map[string][]string{
	"id":          {"id", "stay_id", "reservation_id"},
	"start":       {"start_at", "start", "check_in_at", "checkin"},
	"end":         {"end_at", "end", "check_out_at", "checkout"},
	"animal_id":   {"animal_id", "animal.id"},
	"animal_name": {"animal_name", "animal.name"},
	"species":     {"animal_species", "animal.species", "species"},
	"public_code": {"animal_public_code", "animal.public_code", "public_code"},
	"photo":       {"animal_photo_url", "animal.photo_url", "photo_url"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstIntFlexible: int from several paths (float64/int/string).
func firstIntFlexible(m map[string]any, paths ...string) (int, bool) {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// firstBoolFlexible accepts bool, "true"/"false" and 0/1 payload shapes.
func firstBoolFlexible(m map[string]any, paths ...string) bool {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b
			}
		}
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimeFlexible parses the timestamp shapes the upstream emits.
// Everything is normalized to UTC.
func parseTimeFlexible(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

/********** kennel mapper **********/

func mapKennel(m map[string]any) domain.Kennel {
	k := domain.Kennel{
		ID:   firstAlias(m, kennelAliases, "id"),
		Name: firstAlias(m, kennelAliases, "name"),
		Code: firstAlias(m, kennelAliases, "code"),
	}
	if n, ok := firstIntFlexible(m, kennelAliases["capacity"]...); ok && n > 0 {
		k.Capacity = n
	} else {
		// a kennel always renders with at least one lane
		log.Warn().Str("kennel", k.ID).Msg("missing or non-positive capacity, using 1")
		k.Capacity = 1
	}
	return k
}

/********** stay mapper **********/

// mapStays converts upstream reservation payloads. Records without an id or
// with an unparseable start are skipped and logged; the timeline core only
// ever sees valid timestamps.
func mapStays(kennelID string, in []map[string]any) []domain.Stay {
	out := make([]domain.Stay, 0, len(in))
	for _, m := range in {
		id := firstAlias(m, stayAliases, "id")
		if id == "" {
			log.Warn().Str("kennel", kennelID).Msg("skipping stay without id")
			continue
		}
		start, ok := parseTimeFlexible(firstAlias(m, stayAliases, "start"))
		if !ok {
			log.Warn().Str("kennel", kennelID).Str("stay", id).Msg("skipping stay with unparseable start")
			continue
		}
		s := domain.Stay{
			ID:               id,
			KennelID:         kennelID,
			StartAt:          start,
			IsHotel:          firstBoolFlexible(m, "is_hotel", "hotel"),
			AnimalID:         firstAlias(m, stayAliases, "animal_id"),
			AnimalName:       firstAlias(m, stayAliases, "animal_name"),
			AnimalSpecies:    firstAlias(m, stayAliases, "species"),
			AnimalPublicCode: firstAlias(m, stayAliases, "public_code"),
			AnimalPhotoURL:   ptrStr(firstAlias(m, stayAliases, "photo")),
		}
		if end, ok := parseTimeFlexible(firstAlias(m, stayAliases, "end")); ok {
			s.EndAt = &end
		}
		out = append(out, s)
	}
	return out
}
