package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"guidebolt/internal/domain/models"
	"guidebolt/tests/suite"

	"github.com/brianvoe/gofakeit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuideLifecycle_HappyPath(t *testing.T) {
	_, st := suite.New(t)

	client := &http.Client{Timeout: 10 * time.Second}

	// Редакторские эндпоинты закрыты токеном
	resp := doJSON(t, client, http.MethodPost, st.Server.URL+"/api/v1/guides", "", map[string]any{
		"user_id": st.UserID,
		"title":   "No auth",
		"type":    "Course",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	title := gofakeit.Sentence(3)

	resp = doJSON(t, client, http.MethodPost, st.Server.URL+"/api/v1/guides", st.Token, map[string]any{
		"user_id": st.UserID,
		"title":   title,
		"type":    "Course",
		"tags":    []string{"onboarding"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotEqual(t, uuid.Nil, created.Data.ID)
	assert.Equal(t, "draft", created.Data.Status)

	guideID := created.Data.ID

	// Полный снимок документа: слайд с заголовком и вопросом
	slide := models.NewSlide(guideID, "Welcome", 1)
	heading := "<h1>Hello</h1>"
	question := "What is your name?"
	slide.Blocks = []models.ContentBlock{
		{
			ID:       uuid.New(),
			SlideID:  slide.ID,
			Type:     models.BlockHeading,
			Content:  &heading,
			Position: 1,
		},
		{
			ID:       uuid.New(),
			SlideID:  slide.ID,
			Type:     models.BlockInputField,
			Content:  &question,
			Position: 2,
		},
	}

	resp = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/v1/guides/%s", st.Server.URL, guideID), st.Token, map[string]any{
		"title":  title,
		"tags":   []string{"onboarding"},
		"slides": []models.Slide{slide},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Публикация с кастомным URL, пробелы превращаются в дефисы
	resp = doJSON(t, client, http.MethodPatch, fmt.Sprintf("%s/api/v1/guides/%s/publish", st.Server.URL, guideID), st.Token, map[string]any{
		"custom_url": "My First Guide",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Зритель открывает гайд по слагу без токена
	req, err := http.NewRequest(http.MethodGet, st.Server.URL+"/api/v1/view/my-first-guide", nil)
	require.NoError(t, err)
	viewResp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, viewResp.StatusCode)

	body, err := io.ReadAll(viewResp.Body)
	viewResp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "Hello")

	// Просмотр засчитывается атомарно
	resp = doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/api/v1/guides/%s/views", st.Server.URL, guideID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views struct {
		Data struct {
			Views int64 `json:"views"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	resp.Body.Close()
	assert.Equal(t, int64(1), views.Data.Views)

	// Зритель отправляет ответ
	answer := "Alice"
	resp = doJSON(t, client, http.MethodPost, st.Server.URL+"/api/v1/responses", "", map[string]any{
		"responses": []map[string]any{
			{
				"guide_id":        guideID,
				"slide_id":        slide.ID,
				"block_id":        slide.Blocks[1].ID,
				"user_identifier": "viewer-1",
				"question":        question,
				"answer":          answer,
			},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Создатель видит ответы
	req, err = http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/v1/responses?guide_id=%s", st.Server.URL, guideID), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+st.Token)

	listResp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var list struct {
		Data []models.UserResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	listResp.Body.Close()

	require.Len(t, list.Data, 1)
	assert.Equal(t, "viewer-1", list.Data[0].UserIdentifier)
	require.NotNil(t, list.Data[0].Answer)
	assert.Equal(t, "Alice", *list.Data[0].Answer)
}

func TestFileUpload_RoundTrip(t *testing.T) {
	_, st := suite.New(t)

	client := &http.Client{Timeout: 10 * time.Second}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("viewer attachment"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, st.Server.URL+"/api/v1/uploads", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploaded struct {
		Data struct {
			URL      string `json:"url"`
			Filename string `json:"filename"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	resp.Body.Close()

	assert.NotEmpty(t, uploaded.Data.Filename)
	assert.True(t, strings.HasSuffix(uploaded.Data.Filename, ".txt"))

	delBody, err := json.Marshal(map[string]string{"filename": uploaded.Data.Filename})
	require.NoError(t, err)

	req, err = http.NewRequest(http.MethodDelete, st.Server.URL+"/api/v1/uploads", bytes.NewReader(delBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err = client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)

	return resp
}
