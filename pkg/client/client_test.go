package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhis2-sre/im-remote-cluster/pkg/client"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method        string
	path          string
	authorization string
	body          map[string]any
}

func setupServer(t *testing.T, requests chan<- recorded) string {
	t.Helper()

	record := func(r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			if len(data) > 0 {
				require.NoError(t, json.Unmarshal(data, &body))
			}
		}
		requests <- recorded{
			method:        r.Method,
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			body:          body,
		}
	}
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	cluster := model.RemoteCluster{
		Name: "cluster1",
		Services: []model.RemoteClusterService{
			{Name: "HDFS{2.7.0}", Properties: model.RemoteClusterProperties{"webhdfs.url": "webhdfs://nn:50070"}},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /remoteclusters", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, []model.RemoteCluster{cluster})
	})
	mux.HandleFunc("GET /remoteclusters/{name}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("name") != "cluster1" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `remote cluster "`+r.PathValue("name")+`" doesn't exist`)
			return
		}
		writeJSON(w, http.StatusOK, cluster)
	})
	mux.HandleFunc("POST /remoteclusters", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusCreated, cluster)
	})
	mux.HandleFunc("PUT /remoteclusters/{name}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `invalid view service name "ZK"`)
	})
	mux.HandleFunc("DELETE /remoteclusters/{name}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /viewservices", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, []model.ViewService{
			{Name: "HDFS{2.7.0}", CommonName: "HDFS", Version: "2.7.0", Parameters: []model.ViewServiceParameter{{Name: "webhdfs.url", Required: true}}},
		})
	})
	mux.HandleFunc("GET /views", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, []model.View{{Name: "FILES", Services: []string{"HDFS{2.7.0}"}}})
	})

	server := httptest.NewServer(http.StripPrefix("/api", mux))
	t.Cleanup(server.Close)
	return server.URL
}

func TestClient(t *testing.T) {
	requests := make(chan recorded, 1)
	serverURL := setupServer(t, requests)

	c := client.New(serverURL, "/api", "token")
	ctx := context.Background()

	t.Run("ListRemoteClusters", func(t *testing.T) {
		clusters, err := c.ListRemoteClusters(ctx)

		require.NoError(t, err)
		require.Len(t, clusters, 1)
		assert.Equal(t, "cluster1", clusters[0].Name)
		request := <-requests
		assert.Equal(t, http.MethodGet, request.method)
		assert.Equal(t, "/remoteclusters", request.path)
		assert.Equal(t, "Bearer token", request.authorization)
	})

	t.Run("FindRemoteCluster", func(t *testing.T) {
		cluster, err := c.FindRemoteCluster(ctx, "cluster1")

		require.NoError(t, err)
		assert.Equal(t, "webhdfs://nn:50070", cluster.Services[0].Properties["webhdfs.url"])
		assert.Equal(t, "/remoteclusters/cluster1", (<-requests).path)
	})

	t.Run("FindRemoteClusterNotFound", func(t *testing.T) {
		_, err := c.FindRemoteCluster(ctx, "cluster2")

		require.Error(t, err)
		<-requests
		assert.True(t, client.IsNotFound(err))
		assert.EqualError(t, err, `remote cluster "cluster2" doesn't exist`)
	})

	t.Run("ListServices", func(t *testing.T) {
		services, err := c.ListServices(ctx)

		require.NoError(t, err)
		<-requests
		require.Len(t, services, 1)
		assert.Equal(t, "HDFS", services[0].CommonName)
		assert.True(t, services[0].Parameters[0].Required)
	})

	t.Run("ListViews", func(t *testing.T) {
		views, err := c.ListViews(ctx)

		require.NoError(t, err)
		<-requests
		assert.Equal(t, []model.View{{Name: "FILES", Services: []string{"HDFS{2.7.0}"}}}, views)
	})

	t.Run("Create", func(t *testing.T) {
		cluster := model.RemoteCluster{
			Name:     "cluster1",
			Services: []model.RemoteClusterService{{Name: "HDFS{2.7.0}", Properties: model.RemoteClusterProperties{"webhdfs.url": "webhdfs://nn:50070"}}},
		}

		saved, err := c.SaveRemoteCluster(ctx, cluster, false)

		require.NoError(t, err)
		assert.Equal(t, "cluster1", saved.Name)
		request := <-requests
		assert.Equal(t, http.MethodPost, request.method)
		assert.Equal(t, "/remoteclusters", request.path)
		assert.Equal(t, map[string]any{
			"name": "cluster1",
			"services": []any{
				map[string]any{"name": "HDFS{2.7.0}", "properties": map[string]any{"webhdfs.url": "webhdfs://nn:50070"}},
			},
		}, request.body)
	})

	t.Run("UpdateSurfacesServerMessage", func(t *testing.T) {
		cluster := model.RemoteCluster{Name: "cluster1", Services: []model.RemoteClusterService{{Name: "ZK"}}}

		_, err := c.SaveRemoteCluster(ctx, cluster, true)

		request := <-requests
		assert.Equal(t, http.MethodPut, request.method)
		assert.Equal(t, "/remoteclusters/cluster1", request.path)
		var clientErr *client.Error
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusBadRequest, clientErr.Code)
		assert.Equal(t, `invalid view service name "ZK"`, clientErr.Message)
		assert.False(t, client.IsNotFound(err))
	})

	t.Run("Delete", func(t *testing.T) {
		err := c.DeleteRemoteCluster(ctx, "cluster1")

		require.NoError(t, err)
		request := <-requests
		assert.Equal(t, http.MethodDelete, request.method)
		assert.Equal(t, "/remoteclusters/cluster1", request.path)
	})
}
