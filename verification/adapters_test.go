package verification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

// inferenceServer serves evidence media under /media/ and answers the verify endpoints with reply.
func inferenceServer(t *testing.T, endpoint string, check func(r *http.Request), status int, reply string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/media/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("media:" + r.URL.Path))
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func formFile(t *testing.T, r *http.Request, field string) string {
	t.Helper()
	if !assert.NoError(t, r.ParseMultipartForm(32<<20)) {
		return ""
	}
	f, _, err := r.FormFile(field)
	if !assert.NoError(t, err, "missing multipart field %s", field) {
		return ""
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	assert.NoError(t, err)
	return string(data)
}

func TestWalkVerifier(t *testing.T) {
	var got walkRequest
	srv := inferenceServer(t, "/verify_walk", func(r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}, http.StatusOK, `{"total_distance_km": 1.25, "walk_valid": true}`)

	v := NewWalkVerifier(NewClient(srv.URL, srv.Client()))
	trace := []models.Coordinate{{Lat: 12.9716, Lon: 77.5946}, {Lat: 12.9800, Lon: 77.6000}}

	verdict, err := v.Verify(context.Background(), Evidence{Coordinates: trace})
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.InDelta(t, 1.25, verdict.DistanceKm, 1e-9)
	assert.Equal(t, trace, got.Coordinates)

	var audit map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(verdict.Raw, &audit))
	assert.Contains(t, audit, "service")
	assert.Contains(t, audit, "local_distance_km")
}

func TestWalkVerifierFailures(t *testing.T) {
	trace := []models.Coordinate{{Lat: 1, Lon: 1}, {Lat: 1.01, Lon: 1.01}}

	t.Run("missing fields", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_walk", nil, http.StatusOK, `{"walk_valid": true}`)
		_, err := NewWalkVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), Evidence{Coordinates: trace})
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
	t.Run("server error", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_walk", nil, http.StatusInternalServerError, `{"error":"boom"}`)
		_, err := NewWalkVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), Evidence{Coordinates: trace})
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
	t.Run("single point", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_walk", nil, http.StatusOK, `{}`)
		_, err := NewWalkVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), Evidence{Coordinates: trace[:1]})
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
	t.Run("out of range coordinate", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_walk", nil, http.StatusOK, `{}`)
		bad := []models.Coordinate{{Lat: 95, Lon: 1}, {Lat: 1, Lon: 1}}
		_, err := NewWalkVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), Evidence{Coordinates: bad})
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
}

func TestPlantingVerifier(t *testing.T) {
	var uploaded string
	srv := inferenceServer(t, "/verify_planting", func(r *http.Request) {
		uploaded = formFile(t, r, "video")
	}, http.StatusOK, `{"is_valid": true, "confidence": 0.72, "reason": "sapling and soil visible"}`)

	v := NewPlantingVerifier(NewClient(srv.URL, srv.Client()))
	ev := Evidence{Media: []models.Evidence{{URI: srv.URL + "/media/plant.mp4", Type: models.MediaVideo}}}

	verdict, err := v.Verify(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.InDelta(t, 0.72, verdict.Confidence, 1e-9)
	assert.Equal(t, "sapling and soil visible", verdict.Reason)
	assert.Equal(t, "media:/media/plant.mp4", uploaded)
	assert.JSONEq(t, `{"is_valid": true, "confidence": 0.72, "reason": "sapling and soil visible"}`, string(verdict.Raw))
}

func TestPlantingVerifierFailures(t *testing.T) {
	video := func(uri string) Evidence {
		return Evidence{Media: []models.Evidence{{URI: uri, Type: models.MediaVideo}}}
	}

	t.Run("confidence out of range", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_planting", nil, http.StatusOK, `{"is_valid": true, "confidence": 1.4}`)
		_, err := NewPlantingVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), video(srv.URL+"/media/a.mp4"))
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
	t.Run("media not reachable", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_planting", nil, http.StatusOK, `{"is_valid": true, "confidence": 0.9}`)
		_, err := NewPlantingVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), video(srv.URL+"/missing/a.mp4"))
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
	t.Run("non http uri", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_planting", nil, http.StatusOK, `{}`)
		_, err := NewPlantingVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), video("file:///etc/passwd"))
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
	t.Run("no video", func(t *testing.T) {
		srv := inferenceServer(t, "/verify_planting", nil, http.StatusOK, `{}`)
		_, err := NewPlantingVerifier(NewClient(srv.URL, srv.Client())).Verify(context.Background(), Evidence{})
		assert.ErrorIs(t, err, ErrVerifierUnavailable)
	})
}

func TestTransportVerifier(t *testing.T) {
	var uploaded string
	srv := inferenceServer(t, "/verify_public_transport", func(r *http.Request) {
		uploaded = formFile(t, r, "image")
	}, http.StatusOK, `{"predicted_class": "metro", "confidence": 0.88, "all_probabilities": {"metro": 0.88}, "is_valid": true}`)

	v := NewTransportVerifier(NewClient(srv.URL, srv.Client()))
	ev := Evidence{Media: []models.Evidence{
		{URI: srv.URL + "/media/first.jpg", Type: models.MediaImage},
		{URI: srv.URL + "/media/second.jpg", Type: models.MediaImage},
	}}

	verdict, err := v.Verify(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "metro", verdict.PredictedClass)
	assert.InDelta(t, 0.88, verdict.Confidence, 1e-9)
	assert.True(t, verdict.Valid)
	assert.Equal(t, "media:/media/first.jpg", uploaded)
}

func TestTransportVerifierMissingClass(t *testing.T) {
	srv := inferenceServer(t, "/verify_public_transport", nil, http.StatusOK, `{"confidence": 0.88}`)
	v := NewTransportVerifier(NewClient(srv.URL, srv.Client()))
	ev := Evidence{Media: []models.Evidence{{URI: srv.URL + "/media/a.jpg", Type: models.MediaImage}}}

	_, err := v.Verify(context.Background(), ev)
	assert.ErrorIs(t, err, ErrVerifierUnavailable)
}

func TestCleanupVerifier(t *testing.T) {
	var before, after string
	srv := inferenceServer(t, "/verify_cleanup", func(r *http.Request) {
		before = formFile(t, r, "before")
		after = formFile(t, r, "after")
	}, http.StatusOK, `{"is_valid": false, "confidence": 0.45, "reason": "little change"}`)

	v := NewCleanupVerifier(NewClient(srv.URL, srv.Client()))
	ev := Evidence{Media: []models.Evidence{
		{URI: srv.URL + "/media/before.jpg", Type: models.MediaImage},
		{URI: srv.URL + "/media/clip.mp4", Type: models.MediaVideo},
		{URI: srv.URL + "/media/after.jpg", Type: models.MediaImage},
	}}

	verdict, err := v.Verify(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.InDelta(t, 0.45, verdict.Confidence, 1e-9)
	assert.Equal(t, "media:/media/before.jpg", before)
	assert.Equal(t, "media:/media/after.jpg", after)
}

func TestCleanupVerifierNeedsTwoImages(t *testing.T) {
	srv := inferenceServer(t, "/verify_cleanup", nil, http.StatusOK, `{}`)
	v := NewCleanupVerifier(NewClient(srv.URL, srv.Client()))
	ev := Evidence{Media: []models.Evidence{{URI: srv.URL + "/media/before.jpg", Type: models.MediaImage}}}

	_, err := v.Verify(context.Background(), ev)
	assert.ErrorIs(t, err, ErrVerifierUnavailable)
}

func TestNullVerifier(t *testing.T) {
	_, err := NullVerifier{}.Verify(context.Background(), Evidence{})
	assert.ErrorIs(t, err, ErrManualReviewOnly)
	assert.ErrorIs(t, err, ErrVerifierUnavailable)
}
