package pumpportal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer server.Close()

	c := NewClient()
	img, err := c.FetchImage(context.Background(), server.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img.Data)

	_, err = c.FetchImage(context.Background(), server.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Image fetch failed (404)")
}

func TestClient_UploadMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Claw", r.FormValue("name"))
		assert.Equal(t, "CLAW", r.FormValue("symbol"))
		assert.Equal(t, "true", r.FormValue("showName"))
		assert.Equal(t, "https://claw.example", r.FormValue("website"))
		_, hasTwitter := r.MultipartForm.Value["twitter"]
		assert.False(t, hasTwitter, "empty socials are omitted")

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "image", hdr.Filename)
		assert.Equal(t, []byte("img"), data)

		json.NewEncoder(w).Encode(map[string]string{"metadataUri": "ipfs://meta"})
	}))
	defer server.Close()

	c := NewClient(WithIPFSURL(server.URL))
	uri, err := c.UploadMetadata(context.Background(), MetadataFields{
		Name: "Claw", Symbol: "CLAW", Description: "d", Website: "https://claw.example",
	}, Image{Data: []byte("img"), ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://meta", uri)
}

func TestClient_UploadMetadata_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"upstream error", http.StatusBadGateway, "down", "Metadata upload failed: 502 down"},
		{"no uri", http.StatusOK, `{}`, "metadataUri missing from pump.fun response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(WithIPFSURL(server.URL))
			_, err := c.UploadMetadata(context.Background(), MetadataFields{Name: "n"}, Image{Data: []byte("x")})
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestClient_BuildMintTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade-local", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "create", body["action"])
		assert.Equal(t, "payer", body["publicKey"])
		assert.Equal(t, "mint", body["mint"])
		assert.Equal(t, "true", body["denominatedInSol"])
		assert.Equal(t, 0.1, body["amount"])
		assert.Equal(t, float64(Slippage), body["slippage"])
		assert.Equal(t, "pump", body["pool"])
		assert.Equal(t, "false", body["isMayhemMode"])
		meta := body["tokenMetadata"].(map[string]interface{})
		assert.Equal(t, "ipfs://meta", meta["uri"])

		w.Write([]byte{1, 2, 3})
	}))
	defer server.Close()

	c := NewClient(WithTradeBase(server.URL))
	tx, err := c.BuildMintTransaction(context.Background(), MintRequest{
		Payer: "payer", Mint: "mint", Name: "Claw", Symbol: "CLAW",
		MetadataURI: "ipfs://meta", DevBuySOL: 0.1, PriorityFeeSOL: 0.00005,
	})
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), tx)
}

func TestClient_BuildMintTransaction_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad mint"))
	}))
	defer server.Close()

	c := NewClient(WithTradeBase(server.URL))
	_, err := c.BuildMintTransaction(context.Background(), MintRequest{})
	require.Error(t, err)
	assert.Equal(t, "pump.fun create-local failed: 400 bad mint", err.Error())
}

func TestClient_CollectCreatorFee(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api-key"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "collectCreatorFee", body["action"])

		if body["mint"] == "bad" {
			json.NewEncoder(w).Encode(map[string]string{"error": "no fees"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"signature": "claimsig"})
	}))
	defer server.Close()

	c := NewClient(WithTradeBase(server.URL), WithAPIKey("secret"))
	sig, err := c.CollectCreatorFee(context.Background(), "mint", 0.00005)
	require.NoError(t, err)
	assert.Equal(t, "claimsig", sig)

	_, err = c.CollectCreatorFee(context.Background(), "bad", 0)
	require.Error(t, err)
	assert.Equal(t, "collectCreatorFee failed: no fees", err.Error())
}
