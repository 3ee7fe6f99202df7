// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runnerconfig

import (
	"fmt"
	"time"

	"github.com/go-zookeeper/zk"
)

// zookeeperProvider is a koanf Provider reading the runner config document
// from a single znode, for deployments that centralize adkflow's ambient
// config alongside other services' Zookeeper-managed settings.
type zookeeperProvider struct {
	conn *zk.Conn
	path string
}

func newZookeeperProvider(endpoints []string, path string) (*zookeeperProvider, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("zookeeper endpoints are required")
	}
	if path == "" {
		return nil, fmt.Errorf("zookeeper path is required")
	}

	conn, _, err := zk.Connect(endpoints, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connecting to zookeeper: %w", err)
	}
	return &zookeeperProvider{conn: conn, path: path}, nil
}

func (p *zookeeperProvider) ReadBytes() ([]byte, error) {
	data, _, err := p.conn.Get(p.path)
	if err != nil {
		return nil, fmt.Errorf("reading zookeeper path %s: %w", p.path, err)
	}
	return data, nil
}

func (p *zookeeperProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("zookeeperProvider: use ReadBytes with a parser")
}

// watch blocks, invoking cb on every data change until the node is deleted
// or the watch is lost.
func (p *zookeeperProvider) watch(cb func(event any, err error)) error {
	for {
		data, _, eventCh, err := p.conn.GetW(p.path)
		if err != nil {
			cb(nil, fmt.Errorf("watching zookeeper path %s: %w", p.path, err))
			return err
		}

		event := <-eventCh
		switch event.Type {
		case zk.EventNodeDataChanged:
			cb(data, nil)
		case zk.EventNodeDeleted:
			cb(nil, fmt.Errorf("zookeeper node %s was deleted", p.path))
			return nil
		case zk.EventNotWatching:
			cb(nil, fmt.Errorf("zookeeper watch lost for path %s", p.path))
			return nil
		}
	}
}

func (p *zookeeperProvider) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
