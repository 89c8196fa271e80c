package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/maheshrc27/crosspost/internal/transfer"
)

const misskeyMaxFiles = 16

// Misskey authenticates with the "i" field of every request body.
type misskeyClient struct {
	http        *http.Client
	instanceURL string
	token       string
}

func NewMisskeyClient(httpClient *http.Client, instanceURL, token string) PlatformClient {
	return &misskeyClient{
		http:        httpClient,
		instanceURL: strings.TrimRight(instanceURL, "/"),
		token:       token,
	}
}

func (m *misskeyClient) Post(ctx context.Context, text string) (string, error) {
	return m.createNote(ctx, text, nil)
}

func (m *misskeyClient) PostWithMedia(ctx context.Context, text string, files []string) (string, error) {
	var fileIDs []string
	for _, path := range firstN(files, misskeyMaxFiles) {
		var file transfer.MisskeyDriveFile
		fields := map[string]string{"i": m.token}
		if err := doMultipart(ctx, m.http, m.instanceURL+"/api/drive/files/create", nil, "file", path, fields, &file); err != nil {
			return "", fmt.Errorf("misskey file upload failed: %w", err)
		}
		fileIDs = append(fileIDs, file.ID)
	}
	return m.createNote(ctx, text, fileIDs)
}

func (m *misskeyClient) createNote(ctx context.Context, text string, fileIDs []string) (string, error) {
	var resp transfer.MisskeyNoteResponse
	req := transfer.MisskeyNoteRequest{Token: m.token, Text: text, FileIDs: fileIDs}
	if err := doJSON(ctx, m.http, http.MethodPost, m.instanceURL+"/api/notes/create", nil, req, &resp); err != nil {
		return "", fmt.Errorf("misskey post failed: %w", err)
	}
	return resp.CreatedNote.ID, nil
}
