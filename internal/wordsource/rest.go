package wordsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"vocabdrill/internal/models"
)

const restRequestTimeout = 15 * time.Second

// RESTConfig configures a RESTSource
type RESTConfig struct {
	BaseURL string
	// Client credentials for the token endpoint. Leave TokenURL empty to use
	// StaticToken, or neither for anonymous access.
	ClientID     string
	ClientSecret string
	TokenURL     string
	StaticToken  string
	// HTTPClient is the base transport; the token source wraps it
	HTTPClient *http.Client
}

// RESTSource reads words from a remote JSON API
type RESTSource struct {
	baseURL string
	client  *http.Client
}

// NewRESTSource creates a REST word source. Requests carry a bearer token
// from the configured token provider.
func NewRESTSource(ctx context.Context, cfg RESTConfig) (*RESTSource, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid word source URL %q", cfg.BaseURL)
	}

	baseClient := cfg.HTTPClient
	if baseClient == nil {
		baseClient = &http.Client{Timeout: restRequestTimeout}
	}
	// oauth2 picks up the base client from the context
	ctx = context.WithValue(ctx, oauth2.HTTPClient, baseClient)

	client := baseClient
	switch {
	case cfg.TokenURL != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		client = cc.Client(ctx)
	case cfg.StaticToken != "":
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.StaticToken}))
	}
	client.Timeout = baseClient.Timeout

	return &RESTSource{baseURL: base.String(), client: client}, nil
}

func (s *RESTSource) Vocabs(ctx context.Context) ([]models.Vocab, error) {
	var wire []wireVocab
	if err := s.get(ctx, "/api/vocabs", nil, &wire); err != nil {
		return nil, err
	}
	vocabs := make([]models.Vocab, 0, len(wire))
	for _, v := range wire {
		vocabs = append(vocabs, v.toModel())
	}
	return vocabs, nil
}

func (s *RESTSource) Vocab(ctx context.Context, id int64) (*models.Vocab, error) {
	full, err := s.vocabWithWords(ctx, id)
	if err != nil {
		return nil, err
	}
	vocab := full.Vocab.toModel()
	if vocab.WordCount == 0 {
		vocab.WordCount = len(full.Words)
	}
	return &vocab, nil
}

func (s *RESTSource) VocabWords(ctx context.Context, vocabID int64) ([]models.Word, error) {
	full, err := s.vocabWithWords(ctx, vocabID)
	if err != nil {
		return nil, err
	}
	return wordsFromWire(full.Words), nil
}

func (s *RESTSource) vocabWithWords(ctx context.Context, id int64) (*wireVocabWithWords, error) {
	var full wireVocabWithWords
	if err := s.get(ctx, "/api/vocabs/"+strconv.FormatInt(id, 10), nil, &full); err != nil {
		return nil, err
	}
	return &full, nil
}

func (s *RESTSource) WordsPage(ctx context.Context, vocabID int64, page, size int) (*models.WordPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var wire wireWordPage
	if err := s.get(ctx, "/api/vocabs/"+strconv.FormatInt(vocabID, 10)+"/words", query, &wire); err != nil {
		return nil, err
	}

	result := &models.WordPage{
		Words:      wordsFromWire(wire.Words),
		Page:       int(wire.Page),
		PageSize:   int(wire.PageSize),
		TotalWords: int(wire.TotalWords),
		TotalPages: int(wire.TotalPages),
	}
	if result.PageSize == 0 {
		result.PageSize = size
	}
	if result.TotalPages == 0 {
		result.TotalPages = TotalPages(result.TotalWords, result.PageSize)
	}
	return result, nil
}

func (s *RESTSource) Classroom(ctx context.Context, id int64) (*models.Classroom, error) {
	full, err := s.classroomWithWords(ctx, id)
	if err != nil {
		return nil, err
	}
	classroom := full.Classroom.toModel()
	return &classroom, nil
}

func (s *RESTSource) ClassroomWords(ctx context.Context, classroomID int64) ([]models.Word, error) {
	full, err := s.classroomWithWords(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	return wordsFromWire(full.Words), nil
}

func (s *RESTSource) classroomWithWords(ctx context.Context, id int64) (*wireClassroomWithWords, error) {
	var full wireClassroomWithWords
	if err := s.get(ctx, "/api/classrooms/"+strconv.FormatInt(id, 10), nil, &full); err != nil {
		return nil, err
	}
	return &full, nil
}

// get fetches path and decodes the JSON body into out
func (s *RESTSource) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &NetworkError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &NetworkError{Endpoint: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Endpoint: path, Err: fmt.Errorf("invalid response body: %w", err)}
	}
	return nil
}
