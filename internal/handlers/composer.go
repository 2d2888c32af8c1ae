package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"flaromlab/internal/composer"
	applog "flaromlab/internal/log"
	"flaromlab/models"
)

const composerDraftKey = "composer:draft"

var errNoFormulaStore = errors.New("formula store not configured")

type composerResponse struct {
	State       composer.State    `json:"state"`
	Draft       composer.Draft    `json:"draft"`
	Totals      composer.Totals   `json:"totals"`
	MarginLabel string            `json:"margin_label"`
	Problem     string            `json:"problem,omitempty"`
	Changed     *bool             `json:"changed,omitempty"`
	Available   []models.Molecule `json:"available,omitempty"`
	Saved       *models.Formula   `json:"saved,omitempty"`
}

// countingSaver appends to the formula store and counts successful saves.
type countingSaver struct{}

func (countingSaver) AppendSaved(ctx context.Context, f models.Formula) ([]models.Formula, error) {
	if formulaStore == nil {
		return nil, errNoFormulaStore
	}
	all, err := formulaStore.AppendSaved(ctx, f)
	if err != nil {
		return nil, err
	}
	if recorder != nil {
		recorder.FormulaSaved()
	}
	return all, nil
}

// sessionComposer rebuilds the session's composer against the current
// molecule index. It writes a 503 when sessions or the catalog are missing.
func sessionComposer(w http.ResponseWriter, r *http.Request) (*composer.Composer, bool) {
	if sessionManager == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "sessions not available")
		return nil, false
	}
	snap, ok := currentSnapshot(w)
	if !ok {
		return nil, false
	}
	c := composer.New(snap.MoleculeIndex(), countingSaver{}, composer.WithMarkup(markup))
	if raw := sessionManager.GetString(r.Context(), composerDraftKey); raw != "" {
		var draft composer.Draft
		if err := json.Unmarshal([]byte(raw), &draft); err != nil {
			applog.Warn(r.Context(), "discarding unreadable composer draft", "error", err)
		} else {
			c.Restore(draft)
		}
	}
	return c, true
}

func storeDraft(r *http.Request, c *composer.Composer) {
	data, err := json.Marshal(c.Draft())
	if err != nil {
		applog.Error(r.Context(), "failed to encode composer draft", "error", err)
		return
	}
	sessionManager.Put(r.Context(), composerDraftKey, string(data))
}

func describeComposer(c *composer.Composer) composerResponse {
	resp := composerResponse{
		State:       c.State(),
		Draft:       c.Draft(),
		Totals:      c.Totals(),
		MarginLabel: c.MarginLabel(),
	}
	if err := c.Validate(); err != nil && resp.State != composer.StateEmpty {
		resp.Problem = err.Error()
	}
	return resp
}

func writeComposer(w http.ResponseWriter, r *http.Request, c *composer.Composer, changed *bool) {
	resp := describeComposer(c)
	resp.Changed = changed
	if changed != nil && *changed {
		notifyHTMX(w, r, "composer-changed")
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetComposer returns the session draft with live totals and the molecules
// that can still be added, narrowed by q.
func GetComposer(w http.ResponseWriter, r *http.Request) {
	c, ok := sessionComposer(w, r)
	if !ok {
		return
	}
	resp := describeComposer(c)
	resp.Available = c.Available(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, resp)
}

// UpdateComposer sets the draft name and category when present in the body.
func UpdateComposer(w http.ResponseWriter, r *http.Request) {
	c, ok := sessionComposer(w, r)
	if !ok {
		return
	}
	input, err := readInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := input["name"]; ok {
		c.SetName(input.Get("name"))
	}
	if _, ok := input["category"]; ok {
		c.SetCategory(input.Get("category"))
	}
	storeDraft(r, c)
	changed := true
	writeComposer(w, r, c, &changed)
}

// AddComponent appends molecule_id at percent. Rejected lines leave the
// draft untouched and report changed=false.
func AddComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := sessionComposer(w, r)
	if !ok {
		return
	}
	input, err := readInput(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	changed := c.AddText(input.Get("molecule_id"), input.Get("percent"))
	if changed {
		storeDraft(r, c)
	} else {
		applog.Debug(r.Context(), "composer line rejected", "molecule_id", input.Get("molecule_id"), "percent", input.Get("percent"))
	}
	writeComposer(w, r, c, &changed)
}

// RemoveComponent drops the line at the index path value.
func RemoveComponent(w http.ResponseWriter, r *http.Request) {
	c, ok := sessionComposer(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(strings.TrimSpace(r.PathValue("index")))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	changed := c.Remove(index)
	if changed {
		storeDraft(r, c)
	}
	writeComposer(w, r, c, &changed)
}

// SaveComposer persists a valid draft and clears it. Invalid drafts get a
// 422; persistence failures keep the draft for a retry.
func SaveComposer(w http.ResponseWriter, r *http.Request) {
	c, ok := sessionComposer(w, r)
	if !ok {
		return
	}
	formula, err := c.Save(r.Context())
	if err != nil {
		var invalid *composer.ValidationError
		if errors.As(err, &invalid) {
			writeJSONError(w, http.StatusUnprocessableEntity, invalid.Error())
			return
		}
		applog.Error(r.Context(), "failed to save formula", "error", err, "name", c.Draft().Name)
		writeJSONError(w, http.StatusInternalServerError, "unable to save formula")
		return
	}
	storeDraft(r, c)
	applog.Info(r.Context(), "formula composed", "id", formula.ID, "cost", formula.CostPerLiter)

	resp := describeComposer(c)
	resp.Saved = &formula
	notifyHTMX(w, r, "formula-saved")
	writeJSON(w, http.StatusCreated, resp)
}

// ResetComposer discards the session draft.
func ResetComposer(w http.ResponseWriter, r *http.Request) {
	c, ok := sessionComposer(w, r)
	if !ok {
		return
	}
	c.Reset()
	storeDraft(r, c)
	changed := true
	writeComposer(w, r, c, &changed)
}
