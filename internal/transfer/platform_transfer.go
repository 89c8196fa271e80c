package transfer

import "encoding/json"

type BlueskySession struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	Did        string `json:"did"`
}

type BlueskyBlob struct {
	Blob json.RawMessage `json:"blob"`
}

type BlueskyImage struct {
	Alt   string          `json:"alt"`
	Image json.RawMessage `json:"image"`
}

type BlueskyEmbed struct {
	Type   string         `json:"$type"`
	Images []BlueskyImage `json:"images"`
}

type BlueskyPostRecord struct {
	Type      string        `json:"$type"`
	Text      string        `json:"text"`
	CreatedAt string        `json:"createdAt"`
	Embed     *BlueskyEmbed `json:"embed,omitempty"`
}

type BlueskyCreateRecord struct {
	Repo       string            `json:"repo"`
	Collection string            `json:"collection"`
	Record     BlueskyPostRecord `json:"record"`
}

type BlueskyRecordRef struct {
	URI string `json:"uri"`
	Cid string `json:"cid"`
}

type XMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type XTweetRequest struct {
	Text  string  `json:"text"`
	Media *XMedia `json:"media,omitempty"`
}

type XTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type XMediaResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type ThreadsID struct {
	ID string `json:"id"`
}

type MisskeyNoteRequest struct {
	Token   string   `json:"i"`
	Text    string   `json:"text"`
	FileIDs []string `json:"fileIds,omitempty"`
}

type MisskeyNoteResponse struct {
	CreatedNote struct {
		ID string `json:"id"`
	} `json:"createdNote"`
}

type MisskeyDriveFile struct {
	ID string `json:"id"`
}

type MastodonStatusRequest struct {
	Status   string   `json:"status"`
	MediaIDs []string `json:"media_ids,omitempty"`
}

type MastodonStatus struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type MastodonMedia struct {
	ID string `json:"id"`
}
