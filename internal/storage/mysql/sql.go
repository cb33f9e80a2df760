package mysql

const upsertKennelSQL = `
INSERT INTO kennels
  (id, name, code, capacity)
VALUES
  (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name       = VALUES(name),
  code       = VALUES(code),
  capacity   = VALUES(capacity),
  updated_at = CURRENT_TIMESTAMP
`

const insertStaysPrefix = "INSERT INTO stays\n  (id, kennel_id, animal_id, animal_name, animal_species, animal_public_code, animal_photo_url, is_hotel, start_at, end_at)\nVALUES "

// COALESCE keeps the stored value when the upstream omits a field; end_at is
// NOT coalesced so a checkout upstream can re-open or close a stay.
const insertStaysOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  kennel_id          = VALUES(kennel_id),\n" +
	"  animal_id          = COALESCE(VALUES(animal_id), stays.animal_id),\n" +
	"  animal_name        = COALESCE(VALUES(animal_name), stays.animal_name),\n" +
	"  animal_species     = COALESCE(VALUES(animal_species), stays.animal_species),\n" +
	"  animal_public_code = COALESCE(VALUES(animal_public_code), stays.animal_public_code),\n" +
	"  animal_photo_url   = COALESCE(VALUES(animal_photo_url), stays.animal_photo_url),\n" +
	"  is_hotel           = VALUES(is_hotel),\n" +
	"  start_at           = VALUES(start_at),\n" +
	"  end_at             = VALUES(end_at)\n"

const insertMissSQL = `
INSERT INTO sync_misses (kennel_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP, http_status = VALUES(http_status)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Kennels with their stays overlapping the window. Open-ended stays
// (end_at IS NULL) always qualify once they have started before the window
// closes. Kennels without any stay in the window are not returned; the
// query layer drops them from the view anyway.
const listWindowSQL = `
SELECT
  k.id, k.name, k.code, k.capacity,
  s.id, s.animal_id, s.animal_name, s.animal_species, s.animal_public_code,
  s.animal_photo_url, s.is_hotel, s.start_at, s.end_at
FROM kennels k
JOIN stays s ON s.kennel_id = k.id
WHERE s.start_at < ? AND (s.end_at IS NULL OR s.end_at > ?)
ORDER BY k.code, k.id, s.start_at, s.id
`
