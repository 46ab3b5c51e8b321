package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tartampluch/go-eracal/internal/calendar"
	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/era"
	"github.com/tartampluch/go-eracal/internal/query"
)

type errorBody struct {
	Error  string           `json:"error"`
	Issues []calendar.Issue `json:"issues,omitempty"`
}

// handleFields expands a day into its calendar fields.
//
//	GET /fields?calendar=buddhist&year=2568&month=5&day=15&lenient=false
func (s *CalendarServer) handleFields(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	req, err := s.fieldsRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	res, err := s.Query.Fields(req)
	var verr *calendar.ValidationError
	switch {
	case errors.Is(err, era.ErrUnknownCalendar):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Issues: verr.Issues})
	case err != nil:
		slog.Error(config.HTTPMsgInternalErr,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: config.HTTPMsgInternalErr})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// handleCalendars lists the registered variants.
func (s *CalendarServer) handleCalendars(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	locale := r.URL.Query().Get(config.QueryLocale)
	if locale == "" {
		locale = s.Defaults.Locale
	}
	writeJSON(w, http.StatusOK, s.Query.Calendars(locale))
}

func (s *CalendarServer) fieldsRequest(q url.Values) (query.Request, error) {
	req := query.Request{
		Calendar: s.Defaults.Calendar,
		Lenient:  s.Defaults.Lenient,
		Locale:   s.Defaults.Locale,
		Day:      1,
	}
	if v := q.Get(config.QueryCalendar); v != "" {
		req.Calendar = v
	}
	if v := q.Get(config.QueryLocale); v != "" {
		req.Locale = v
	}
	if v := q.Get(config.QueryLenient); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, paramError(config.QueryLenient, v)
		}
		req.Lenient = b
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{config.QueryJDN, &req.JDN},
		{config.QueryYear, &req.Year},
		{config.QueryEra, &req.Era},
	} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, paramError(p.name, v)
			}
			*p.dst = &n
		}
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{config.QueryMonth, &req.Month},
		{config.QueryDay, &req.Day},
	} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, paramError(p.name, v)
			}
			*p.dst = n
		}
	}
	return req, nil
}

func paramError(name, value string) error {
	return fmt.Errorf("%s: %s=%q", config.ErrQueryParam, name, value)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
