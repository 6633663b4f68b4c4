package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amimof/huego"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/domain/service"
	"yocto-led-bridge/internal/domain/translator"
	"yocto-led-bridge/internal/ports"
)

type Server struct {
	bridge     ports.BridgePort
	translator translator.Translator
	logger     *slog.Logger
	ip         string
	port       int
	udn        string
}

type Options struct {
	IP         string
	Port       int
	UDN        string
	Translator translator.Translator
	Logger     *slog.Logger
}

func NewServer(bridge ports.BridgePort, opts Options) *Server {
	if opts.Translator == nil {
		opts.Translator = &translator.LightStrategy{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Port == 0 {
		opts.Port = 80
	}
	return &Server{
		bridge:     bridge,
		translator: opts.Translator,
		logger:     opts.Logger.With("component", "http"),
		ip:         opts.IP,
		port:       opts.Port,
		udn:        opts.UDN,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/description.xml", s.handleDescription)
	mux.HandleFunc("/api", s.handleAPI)
	mux.HandleFunc("/api/", s.handleAPI)
	mux.HandleFunc("GET /admin", s.handleAdmin)
	mux.HandleFunc("GET /admin/entries", s.handleListEntries)
	mux.HandleFunc("POST /admin/entries", s.handleSubmitEntry)
	mux.HandleFunc("DELETE /admin/entries/{id}", s.handleRemoveEntry)
	mux.HandleFunc("POST /admin/entries/{id}/reload", s.handleReloadEntry)
	mux.HandleFunc("GET /admin/entries/{id}/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("GET /admin/texts", s.handleListTexts)
	mux.HandleFunc("PUT /admin/texts/{id}", s.handleSetText)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8" ?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
<specVersion>
<major>1</major>
<minor>0</minor>
</specVersion>
<URLBase>http://%s:%d/</URLBase>
<device>
<deviceType>urn:schemas-upnp-org:device:Basic:1</deviceType>
<friendlyName>Philips hue (%s)</friendlyName>
<manufacturer>Royal Philips Electronics</manufacturer>
<manufacturerURL>http://www.philips.com</manufacturerURL>
<modelDescription>Yoctopuce LED bridge</modelDescription>
<modelName>Philips hue bridge 2012</modelName>
<modelNumber>929000226503</modelNumber>
<modelURL>http://www.meethue.com</modelURL>
<serialNumber>%s</serialNumber>
<UDN>uuid:%s</UDN>
<presentationURL>admin</presentationURL>
</device>
</root>`, s.ip, s.port, s.ip, serialFromUDN(s.udn), s.udn)
}

// serialFromUDN takes the last 12 hex digits of the UDN, like a real bridge
// whose serial is its MAC address.
func serialFromUDN(udn string) string {
	hex := strings.ReplaceAll(udn, "-", "")
	if len(hex) < 12 {
		return hex
	}
	return hex[len(hex)-12:]
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if r.Method == http.MethodPost && (path == "" || path == "/") {
		s.handleRegister(w, r)
		return
	}

	if len(parts) < 1 || parts[0] == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	subPath := parts[1:]
	if len(subPath) == 0 {
		s.handleFullState(w, r)
		return
	}

	switch subPath[0] {
	case "lights":
		switch {
		case len(subPath) == 1:
			s.handleGetLights(w, r)
		case len(subPath) == 2:
			s.handleGetLight(w, r, model.ModuleID(subPath[1]))
		case len(subPath) == 3 && subPath[2] == "state":
			s.handleSetLightState(w, r, model.ModuleID(subPath[1]))
		default:
			http.NotFound(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `[{"success":{"username": "admin"}}]`)
}

func (s *Server) hueLight(l model.Light) *huego.Light {
	meta := s.translator.GetMetadata()
	return &huego.Light{
		Name:             l.Name,
		Type:             meta.Type,
		State:            s.translator.ToHue(l.State),
		ModelID:          meta.ModelID,
		UniqueID:         string(l.ID),
		ManufacturerName: meta.ManufacturerName,
	}
}

func (s *Server) hueLights(ctx context.Context) map[string]*huego.Light {
	lights := make(map[string]*huego.Light)
	for _, l := range s.bridge.Lights(ctx) {
		lights[string(l.ID)] = s.hueLight(l)
	}
	return lights
}

func (s *Server) handleFullState(w http.ResponseWriter, r *http.Request) {
	fullState := map[string]interface{}{
		"lights": s.hueLights(r.Context()),
		"groups": make(map[string]interface{}),
		"config": map[string]interface{}{
			"name":       "Philips hue",
			"swversion":  "01003542",
			"apiversion": "1.11.0",
			"mac":        "00:17:88:10:22:01",
			"bridgeid":   "001788FFFE102201",
			"modelid":    "BSB001",
		},
	}
	writeJSON(w, http.StatusOK, fullState)
}

func (s *Server) handleGetLights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hueLights(r.Context()))
}

func (s *Server) handleGetLight(w http.ResponseWriter, r *http.Request, id model.ModuleID) {
	l, err := s.bridge.Light(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.hueLight(l))
}

// hueErrDeviceOff is the Hue API error for state changes sent to a light that is off.
const hueErrDeviceOff = 201

func (s *Server) handleSetLightState(w http.ResponseWriter, r *http.Request, id model.ModuleID) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var stateUpdate map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&stateUpdate); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	current, err := s.bridge.Light(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	update := translator.ParseHueUpdate(stateUpdate)
	on, req := s.translator.ToEntity(update, current.State)
	switch {
	case on:
		err = s.bridge.TurnOnLight(r.Context(), id, req)
	case update.On != nil:
		err = s.bridge.TurnOffLight(r.Context(), id)
	}
	if err != nil {
		// State is already updated; the device write is best effort.
		s.logger.Warn("light command failed", "id", id, "error", err)
	}

	resp := []map[string]interface{}{}
	for k, v := range stateUpdate {
		address := fmt.Sprintf("/lights/%s/state/%s", id, k)
		if !on && k != "on" {
			resp = append(resp, map[string]interface{}{
				"error": map[string]interface{}{
					"type":        hueErrDeviceOff,
					"address":     address,
					"description": fmt.Sprintf("parameter, %s, is not modifiable. Device is set to off.", k),
				},
			})
			continue
		}
		resp = append(resp, map[string]interface{}{
			"success": map[string]interface{}{address: v},
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	type entryView struct {
		*model.Entry
		State model.EntryState `json:"state"`
	}
	entries := s.bridge.Entries(r.Context())
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{Entry: e, State: e.State})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	var input model.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.bridge.SubmitEntry(r.Context(), input)
	if err != nil {
		s.logger.Error("config flow failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if res.Type == model.FlowResultCreateEntry {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.RemoveEntry(r.Context(), r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReloadEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.ReloadEntry(r.Context(), r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := s.bridge.Diagnostics(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

func (s *Server) handleListTexts(w http.ResponseWriter, r *http.Request) {
	texts := s.bridge.Texts(r.Context())
	if texts == nil {
		texts = []model.Text{}
	}
	writeJSON(w, http.StatusOK, texts)
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	var body model.TextState
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := model.ModuleID(r.PathValue("id"))
	if err := s.bridge.SetText(r.Context(), id, body.Value); err != nil {
		if errors.Is(err, service.ErrEntityNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Warn("display update failed", "id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEntryNotFound), errors.Is(err, service.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEntryNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, adminPage)
}
