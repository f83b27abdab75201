package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"textprep/internal/app"
	"textprep/internal/httputil"
	"textprep/internal/imageprep"
	"textprep/internal/media"
)

type generateImageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Size   string `json:"size" validate:"omitempty,oneof=1024x1024 1792x1024 1024x1792"`
}

// readUpload returns the bytes of the multipart field name.
func readUpload(deps app.Deps, w http.ResponseWriter, r *http.Request, name string) ([]byte, string, bool) {
	limit := deps.Config.MaxUploadSize
	if r.ContentLength > limit {
		httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", limit), nil, http.StatusBadRequest)
		return nil, "", false
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<10)

	file, header, err := r.FormFile(name)
	if err != nil {
		httputil.Fail(deps.Log, w, name+" is required", err, http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to read "+name, err, http.StatusInternalServerError)
		return nil, "", false
	}
	return data, header.Filename, true
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func prepareImageHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _, ok := readUpload(deps, w, r, "image")
		if !ok {
			return
		}
		png, err := imageprep.Prepare(data)
		if errors.Is(err, imageprep.ErrTooLarge) {
			httputil.Fail(deps.Log, w, "image too large after preparation", err, http.StatusRequestEntityTooLarge)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "unsupported or corrupt image", err, http.StatusBadRequest)
			return
		}
		writePNG(w, png)
	}
}

func generateImageHandler(deps app.Deps) http.HandlerFunc {
	limit := int64(deps.Config.MaxTextBytes)
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateImageRequest
		if !httputil.DecodeJSON(deps.Log, w, r, limit, &req) {
			return
		}
		png, err := deps.Processor.GenerateImage(r.Context(), req.Prompt, req.Size)
		if err != nil {
			failRemote(deps.Log, w, "image generation", err)
			return
		}
		writePNG(w, png)
	}
}

func describeImageHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _, ok := readUpload(deps, w, r, "image")
		if !ok {
			return
		}
		mode := media.AnalysisMode(r.FormValue("mode"))
		if mode == "" {
			mode = media.ModeGeneral
		}
		if !mode.Valid() {
			httputil.Fail(deps.Log, w, "unknown analysis mode", nil, http.StatusBadRequest)
			return
		}
		desc, err := deps.Processor.DescribeImage(r.Context(), data, mode)
		if err != nil {
			failRemote(deps.Log, w, "image analysis", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"description": desc, "mode": string(mode)})
	}
}

func transcribeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		audio, filename, ok := readUpload(deps, w, r, "audio")
		if !ok {
			return
		}
		text, err := deps.Processor.Transcribe(r.Context(), audio, filename)
		if err != nil {
			failRemote(deps.Log, w, "transcription", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}
