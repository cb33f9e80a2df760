package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"shelter_board/internal/app"
	"shelter_board/internal/domain"
)

type Handlers struct {
	Q *app.TimelineQueryService
	W *app.WeatherService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/timeline/hotel", h.hotelTimeline)
	s.mux.Get("/v1/timeline/kennels", h.kennelTimeline)
	s.mux.Get("/v1/weather", h.weather)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// parseWindow reads from/to query params (ISO dates); both absent falls back
// to the default display window.
func parseWindow(r *http.Request) (time.Time, time.Time, bool) {
	fs, ts := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if fs == "" && ts == "" {
		from, to := app.DefaultWindow(time.Now())
		return from, to, true
	}
	from, err := time.Parse("2006-01-02", fs)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", ts)
	if err != nil || to.Before(from) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// JSON shapes for the grid renderer.

type stayDTO struct {
	ID               string  `json:"id"`
	StartAt          string  `json:"start_at"`
	EndAt            *string `json:"end_at"`
	IsHotel          bool    `json:"is_hotel"`
	AnimalID         string  `json:"animal_id"`
	AnimalName       string  `json:"animal_name"`
	AnimalSpecies    string  `json:"animal_species"`
	AnimalPublicCode string  `json:"animal_public_code"`
	AnimalPhotoURL   *string `json:"animal_photo_url"`
	Lane             int     `json:"lane"`
	HasConflict      bool    `json:"has_conflict"`
	OffsetDays       int     `json:"offset_days"`
	WidthDays        int     `json:"width_days"`
	OpenEnded        bool    `json:"open_ended"`
}

type kennelDTO struct {
	KennelID   string      `json:"kennel_id"`
	KennelName string      `json:"kennel_name"`
	KennelCode string      `json:"kennel_code"`
	Capacity   int         `json:"capacity"`
	Lanes      [][]stayDTO `json:"lanes"`
}

type timelineDTO struct {
	FromDate        string      `json:"from_date"`
	ToDate          string      `json:"to_date"`
	TodayOffsetDays *int        `json:"today_offset_days"`
	Kennels         []kennelDTO `json:"kennels"`
}

func toDTO(v domain.TimelineView) timelineDTO {
	out := timelineDTO{
		FromDate:        v.From.Format("2006-01-02"),
		ToDate:          v.To.Format("2006-01-02"),
		TodayOffsetDays: v.TodayOffsetDays,
		Kennels:         make([]kennelDTO, 0, len(v.Kennels)),
	}
	for _, k := range v.Kennels {
		kd := kennelDTO{
			KennelID:   k.KennelID,
			KennelName: k.KennelName,
			KennelCode: k.KennelCode,
			Capacity:   k.Capacity,
			Lanes:      make([][]stayDTO, len(k.Lanes)),
		}
		for i, lane := range k.Lanes {
			row := make([]stayDTO, 0, len(lane))
			for _, p := range lane {
				var end *string
				if p.EndAt != nil {
					e := p.EndAt.UTC().Format(time.RFC3339)
					end = &e
				}
				row = append(row, stayDTO{
					ID:               p.ID,
					StartAt:          p.StartAt.UTC().Format(time.RFC3339),
					EndAt:            end,
					IsHotel:          p.IsHotel,
					AnimalID:         p.AnimalID,
					AnimalName:       p.AnimalName,
					AnimalSpecies:    p.AnimalSpecies,
					AnimalPublicCode: p.AnimalPublicCode,
					AnimalPhotoURL:   p.AnimalPhotoURL,
					Lane:             p.Lane,
					HasConflict:      p.HasConflict,
					OffsetDays:       p.OffsetDays,
					WidthDays:        p.WidthDays,
					OpenEnded:        p.OpenEnded,
				})
			}
			kd.Lanes[i] = row
		}
		out.Kennels = append(out.Kennels, kd)
	}
	return out
}

func (h *Handlers) hotelTimeline(w http.ResponseWriter, r *http.Request) {
	h.timeline(w, r, h.Q.HotelTimeline)
}

func (h *Handlers) kennelTimeline(w http.ResponseWriter, r *http.Request) {
	h.timeline(w, r, h.Q.KennelTimeline)
}

func (h *Handlers) timeline(w http.ResponseWriter, r *http.Request,
	query func(ctx context.Context, from, to time.Time) (domain.TimelineView, error)) {
	from, to, ok := parseWindow(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid window", "from and to must be YYYY-MM-DD with from <= to")
		return
	}
	view, err := query(r.Context(), from, to)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Timeline unavailable", "failed to load timeline data")
		return
	}

	etag, body := calcETagAndBody(toDTO(view))
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write timeline body")
	}
}

func (h *Handlers) weather(w http.ResponseWriter, r *http.Request) {
	org := r.URL.Query().Get("org")
	if org == "" {
		writeProblem(w, http.StatusBadRequest, "Missing org", "org query parameter is required")
		return
	}
	out, err := h.W.Current(r.Context(), org)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Weather unavailable", "upstream weather fetch failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Error().Err(err).Msg("failed to write weather body")
	}
}
