// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonclient 实现 json rpc 客户端请求功能
package jsonclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/33cn/rpsls/types"
	"github.com/pkg/errors"
)

// JSONClient a object of jsonclient
type JSONClient struct {
	url    string
	prefix string
	client *http.Client
	id     uint64
}

type clientRequest struct {
	Method string         `json:"method"`
	Params [1]interface{} `json:"params"`
	ID     uint64         `json:"id"`
}

type clientResponse struct {
	ID     uint64           `json:"id"`
	Result *json.RawMessage `json:"result"`
	Error  interface{}      `json:"error"`
}

// NewJSONClient produce a json object, methods without a "." get the Rpsls prefix
func NewJSONClient(url string) (*JSONClient, error) {
	return NewJSONClientWithPrefix("Rpsls", url)
}

// NewJSONClientWithPrefix produce a json object with prefix
func NewJSONClientWithPrefix(prefix, url string) (*JSONClient, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return &JSONClient{
		url:    url,
		prefix: prefix,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Call a json rpc method. Failures to reach the node or to read its answer
// wrap types.ErrTransport; errors answered by the node come back as their sentinel.
func (client *JSONClient) Call(ctx context.Context, method string, params, resp interface{}) error {
	if !strings.Contains(method, ".") {
		method = client.prefix + "." + method
	}
	req := &clientRequest{Method: method, ID: atomic.AddUint64(&client.id, 1)}
	req.Params[0] = params
	data, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(types.ErrMarshal, err.Error())
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, client.url, bytes.NewBuffer(data))
	if err != nil {
		return errors.Wrap(types.ErrTransport, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	postresp, err := client.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(types.ErrTransport, err.Error())
	}
	defer postresp.Body.Close()
	b, err := io.ReadAll(postresp.Body)
	if err != nil {
		return errors.Wrap(types.ErrTransport, err.Error())
	}
	if postresp.StatusCode != http.StatusOK {
		return errors.Wrapf(types.ErrTransport, "http status %d: %s", postresp.StatusCode, strings.TrimSpace(string(b)))
	}
	cresp := &clientResponse{}
	if err := json.Unmarshal(b, cresp); err != nil {
		return errors.Wrap(types.ErrTransport, "decode response: "+err.Error())
	}
	if cresp.Error != nil {
		msg := fmt.Sprintf("%v", cresp.Error)
		if sentinel, ok := types.ErrorByName(msg); ok {
			return sentinel
		}
		return errors.New(msg)
	}
	if cresp.Result == nil {
		return errors.Wrap(types.ErrTransport, "empty result")
	}
	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(*cresp.Result, resp); err != nil {
		return errors.Wrap(types.ErrUnmarshal, err.Error())
	}
	return nil
}
