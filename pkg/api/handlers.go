package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/1F47E/nato-grid/pkg/coordparse"
	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/1F47E/nato-grid/pkg/places"
	"github.com/1F47E/nato-grid/pkg/share"
	"github.com/julienschmidt/httprouter"
)

const defaultNeighbors = 5

type coordinateRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required,max=256"`
}

type parseRequest struct {
	Query string `json:"q" validate:"required,max=128"`
}

type nearestRequest struct {
	K int `json:"k" validate:"gte=1,lte=50"`
}

type codeResponse struct {
	Code     string          `json:"code"`
	Short    string          `json:"short"`
	Words    []string        `json:"words"`
	Location models.Location `json:"location"`
}

func newCodeResponse(code gridcode.Code, loc models.Location) codeResponse {
	return codeResponse{
		Code:     code.String(),
		Short:    code.Short(),
		Words:    code,
		Location: loc,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lat, lon := s.codec.Resolution()
	data := envelope{
		"status":   "ok",
		"alphabet": s.codec.Alphabet().Name(),
		"length":   s.codec.Length(),
		"bounds":   s.codec.Bounds(),
		"resolution": map[string]float64{
			"lat_deg": lat,
			"lon_deg": lon,
		},
	}
	if s.places != nil {
		data["places"] = s.places.Count()
	}
	if err := s.writeJSON(w, http.StatusOK, data, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) encode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		request coordinateRequest
		err     error
	)

	if request.Lat, err = queryFloat(r, "lat"); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if request.Lon, err = queryFloat(r, "lon"); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := s.validateRequest(request); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	code, err := s.codec.Encode(request.Lat, request.Lon)
	s.metrics.observe("encode", err)
	if err != nil {
		s.errorStatus(w, r, err)
		return
	}

	resp := newCodeResponse(code, models.Location{Lat: request.Lat, Lon: request.Lon})
	if err := s.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	request := codeRequest{Code: strings.TrimSpace(r.URL.Query().Get("code"))}
	if err := s.validateRequest(request); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	code, loc, err := s.codec.Resolve(request.Code)
	s.metrics.observe("decode", err)
	if err != nil {
		s.errorStatus(w, r, err)
		return
	}

	data := envelope{
		"data":  newCodeResponse(code, loc),
		"links": share.Links(loc),
	}
	if err := s.writeJSON(w, http.StatusOK, data, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	request := parseRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := s.validateRequest(request); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	loc, err := coordparse.Parse(request.Query)
	s.metrics.observe("parse", err)
	if err != nil {
		s.errorStatus(w, r, err)
		return
	}

	code, err := s.codec.Encode(loc.Lat, loc.Lon)
	s.metrics.observe("encode", err)
	if err != nil {
		s.errorStatus(w, r, err)
		return
	}

	data := envelope{
		"data":      newCodeResponse(code, loc),
		"formatted": coordparse.Format(loc),
	}
	if err := s.writeJSON(w, http.StatusOK, data, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) shareLink(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	request := codeRequest{Code: strings.TrimSpace(r.URL.Query().Get("code"))}
	if err := s.validateRequest(request); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	code, loc, err := s.codec.Resolve(request.Code)
	s.metrics.observe("decode", err)
	if err != nil {
		s.errorStatus(w, r, err)
		return
	}

	link, err := share.ShareURL(s.cfg.BaseURL, code)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}

	data := envelope{
		"data":  newCodeResponse(code, loc),
		"url":   link,
		"links": share.Links(loc),
	}
	if err := s.writeJSON(w, http.StatusOK, data, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *Server) nearest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.places == nil {
		s.notFoundResponse(w, r, errors.New("no places loaded"))
		return
	}

	request := nearestRequest{K: defaultNeighbors}
	if raw := r.URL.Query().Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			s.badRequestResponse(w, r, errors.New("k must be a valid int"))
			return
		}
		request.K = k
	}
	if err := s.validateRequest(request); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	center, err := s.center(r)
	if err != nil {
		if errors.Is(err, gridcode.ErrInvalidCode) || errors.Is(err, gridcode.ErrOutOfBounds) {
			s.errorStatus(w, r, err)
		} else {
			s.badRequestResponse(w, r, err)
		}
		return
	}

	neighbors := s.places.Nearest(center, request.K)
	if len(neighbors) == 0 {
		s.errorStatus(w, r, places.ErrNotFound)
		return
	}

	data := envelope{
		"data":   neighbors,
		"center": center,
	}
	if err := s.writeJSON(w, http.StatusOK, data, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

// center reads the search origin from either ?code or ?lat&lon.
func (s *Server) center(r *http.Request) (models.Location, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("code")); raw != "" {
		_, loc, err := s.codec.Resolve(raw)
		return loc, err
	}

	var (
		request coordinateRequest
		err     error
	)
	if request.Lat, err = queryFloat(r, "lat"); err != nil {
		return models.Location{}, errors.New("code or lat and lon are required")
	}
	if request.Lon, err = queryFloat(r, "lon"); err != nil {
		return models.Location{}, errors.New("code or lat and lon are required")
	}
	if err := s.validateRequest(request); err != nil {
		return models.Location{}, err
	}
	return models.Location{Lat: request.Lat, Lon: request.Lon}, nil
}
