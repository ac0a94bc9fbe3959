package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON writes data as a JSON body with statusCode and returns the number
// of body bytes written. A marshal failure leaves w untouched, so the caller
// can still return the error and get the pipeline's 500 body.
//
//	_, err := utils.WriteJSON(w, item, http.StatusCreated)
//	return err
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}
