package daemon

import (
	"encoding/json"
	"net/http"

	"recap/internal/types"
)

func (a *API) Settings(w http.ResponseWriter, r *http.Request) {
	if a.Stores == nil || a.Stores.Settings == nil {
		writeServiceError(w, unavailableError("settings store not available", nil))
		return
	}
	switch r.Method {
	case http.MethodGet:
		settings, err := a.Stores.Settings.Load(r.Context())
		if err != nil {
			writeServiceError(w, unavailableError(err.Error(), err))
			return
		}
		writeJSON(w, http.StatusOK, settings)
		return
	case http.MethodPatch:
		var patch types.SettingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
			return
		}
		current, err := a.Stores.Settings.Load(r.Context())
		if err != nil {
			writeServiceError(w, unavailableError(err.Error(), err))
			return
		}
		merged := types.MergeSettings(current, &patch)
		if err := a.Stores.Settings.Save(r.Context(), merged); err != nil {
			writeServiceError(w, unavailableError(err.Error(), err))
			return
		}
		// The full merged document rides on the event so clients apply it
		// without a follow-up fetch.
		a.Hub.Publish(types.EventSettingsUpdated, merged)
		writeJSON(w, http.StatusOK, merged)
		return
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}
