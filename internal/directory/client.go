package directory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient fetches clients and invoices over HTTP.
type HTTPClient struct {
	clientsURL  string
	invoicesURL string
	http        *http.Client
}

// NewHTTPClient builds a directory client against the two service URLs. A
// nil httpClient falls back to a client with a sane timeout.
func NewHTTPClient(clientsURL, invoicesURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{clientsURL: clientsURL, invoicesURL: invoicesURL, http: httpClient}
}

// FetchClients retrieves every client from the clients service.
func (c *HTTPClient) FetchClients(ctx context.Context) ([]Client, error) {
	clients, err := fetchList[Client](ctx, c.http, c.clientsURL)
	if err != nil {
		return nil, fmt.Errorf("directory: fetch clientes: %w", err)
	}
	return clients, nil
}

// FetchInvoices retrieves every invoice from the invoices service.
func (c *HTTPClient) FetchInvoices(ctx context.Context) ([]Invoice, error) {
	invoices, err := fetchList[Invoice](ctx, c.http, c.invoicesURL)
	if err != nil {
		return nil, fmt.Errorf("directory: fetch facturas: %w", err)
	}
	return invoices, nil
}

func fetchList[T any](ctx context.Context, client *http.Client, url string) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("estado inesperado %d de %s", res.StatusCode, url)
	}
	return decodeList[T](res.Body)
}

// decodeList streams a JSON array element by element so large directory
// responses never need to be buffered whole. A single object body is
// accepted as a one-element collection.
func decodeList[T any](r io.Reader) ([]T, error) {
	br := bufio.NewReader(r)
	first, err := peekByte(br)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first != '[' {
		var item T
		if err := dec.Decode(&item); err != nil {
			return nil, err
		}
		return []T{item}, nil
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	out := []T{}
	for dec.More() {
		var item T
		if err := dec.Decode(&item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// peekByte returns the first non-whitespace byte without consuming it.
func peekByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			if err := br.UnreadByte(); err != nil {
				return 0, err
			}
			return b, nil
		}
	}
}
