package remotecluster_test

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"filippo.io/age"
	"github.com/dhis2-sre/im-remote-cluster/pkg/event"
	"github.com/dhis2-sre/im-remote-cluster/pkg/inttest"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/dhis2-sre/im-remote-cluster/pkg/remotecluster"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteClusterHandler(t *testing.T) {
	t.Parallel()

	db := inttest.SetupDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalogService := inttest.SetupCatalog(t, db)

	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	masker, err := remotecluster.NewMasker(identity.String())
	require.NoError(t, err)

	broker := event.NewBroker()
	_, events := broker.Subscribe()

	remoteClusterService := remotecluster.NewService(logger, remotecluster.NewRepository(db), catalogService, masker, broker)

	auth := inttest.SetupAuthentication(t)
	client := inttest.SetupHTTPServer(t, func(router *gin.RouterGroup) {
		remotecluster.Routes(router, auth.Authentication, auth.Authorization, remotecluster.NewHandler(remoteClusterService))
	})

	admin := model.User{ID: 1, Email: "admin@dhis2.org", Groups: []model.Group{{Name: model.AdministratorGroupName}}}
	user := model.User{ID: 2, Email: "user@dhis2.org"}
	asAdmin := auth.WithUser(t, admin)
	asUser := auth.WithUser(t, user)
	jsonContent := inttest.WithHeader("Content-Type", "application/json")

	t.Run("Create", func(t *testing.T) {
		requestBody := strings.NewReader(`{
			"name": " cluster1 ",
			"services": [
				{"name": "AMBARI{2.4.0}", "properties": {"ambari.server.url": "http://ambari:8080/api/v1/clusters/c1", "ambari.server.password": "s3cr3t"}},
				{"name": "YARN{2.7.0}", "properties": {"yarn.resourcemanager.url": "http://rm:8088"}}
			]
		}`)

		var cluster model.RemoteCluster
		client.PostJSON(t, "/remoteclusters", requestBody, &cluster, asAdmin)

		assert.Equal(t, "cluster1", cluster.Name)
		assert.Equal(t, []string{"AMBARI{2.4.0}", "YARN{2.7.0}"}, cluster.ServiceNames())
		ambari, ok := cluster.FindService("AMBARI{2.4.0}")
		require.True(t, ok)
		assert.Equal(t, "s3cr3t", ambari.Properties["ambari.server.password"])
		assert.Equal(t, event.Event{Type: event.RemoteClusterUpdate, Action: "created", Name: "cluster1"}, <-events)
	})

	t.Run("MaskedValuesAreEncryptedAtRest", func(t *testing.T) {
		var property model.RemoteClusterProperty
		err := db.Where("name = ?", "ambari.server.password").First(&property).Error
		require.NoError(t, err)

		assert.True(t, remotecluster.IsMasked(property.Value))
		assert.NotContains(t, property.Value, "s3cr3t")

		var url model.RemoteClusterProperty
		err = db.Where("name = ?", "ambari.server.url").First(&url).Error
		require.NoError(t, err)
		assert.Equal(t, "http://ambari:8080/api/v1/clusters/c1", url.Value)
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		requestBody := strings.NewReader(`{"name": "cluster1", "services": []}`)

		body := client.Do(t, http.MethodPost, "/remoteclusters", requestBody, http.StatusConflict, asAdmin, jsonContent)

		assert.Equal(t, `remote cluster "cluster1" already exists`, string(body))
	})

	t.Run("CreateWithUnknownService", func(t *testing.T) {
		requestBody := strings.NewReader(`{"name": "cluster2", "services": [{"name": "NOPE{1.0}"}]}`)

		body := client.Do(t, http.MethodPost, "/remoteclusters", requestBody, http.StatusBadRequest, asAdmin, jsonContent)

		assert.Equal(t, `invalid view service name "NOPE{1.0}"`, string(body))
	})

	t.Run("CreateWithInvalidName", func(t *testing.T) {
		requestBody := strings.NewReader(`{"name": "my cluster", "services": []}`)

		client.Do(t, http.MethodPost, "/remoteclusters", requestBody, http.StatusBadRequest, asAdmin, jsonContent)
	})

	t.Run("CreateAsNonAdministrator", func(t *testing.T) {
		requestBody := strings.NewReader(`{"name": "cluster3", "services": []}`)

		client.Do(t, http.MethodPost, "/remoteclusters", requestBody, http.StatusForbidden, asUser, jsonContent)
	})

	t.Run("CreateWithoutToken", func(t *testing.T) {
		requestBody := strings.NewReader(`{"name": "cluster3", "services": []}`)

		client.Do(t, http.MethodPost, "/remoteclusters", requestBody, http.StatusUnauthorized, jsonContent)
	})

	t.Run("Read", func(t *testing.T) {
		var cluster model.RemoteCluster
		client.GetJSON(t, "/remoteclusters/cluster1", &cluster, asUser)

		assert.Equal(t, "cluster1", cluster.Name)
		yarn, ok := cluster.FindService("YARN{2.7.0}")
		require.True(t, ok)
		assert.Equal(t, model.RemoteClusterProperties{"yarn.resourcemanager.url": "http://rm:8088"}, yarn.Properties)
		ambari, ok := cluster.FindService("AMBARI{2.4.0}")
		require.True(t, ok)
		assert.Equal(t, "s3cr3t", ambari.Properties["ambari.server.password"])
	})

	t.Run("ReadMissing", func(t *testing.T) {
		body := client.Do(t, http.MethodGet, "/remoteclusters/missing", nil, http.StatusNotFound, asUser)

		assert.Equal(t, `remote cluster "missing" doesn't exist`, string(body))
	})

	t.Run("Update", func(t *testing.T) {
		requestBody := strings.NewReader(`{
			"name": "cluster1",
			"services": [
				{"name": "HDFS{2.7.0}", "properties": {"webhdfs.url": "webhdfs://namenode:50070"}}
			]
		}`)

		var cluster model.RemoteCluster
		client.PutJSON(t, "/remoteclusters/cluster1", requestBody, &cluster, asAdmin)

		assert.Equal(t, []string{"HDFS{2.7.0}"}, cluster.ServiceNames())
		assert.Equal(t, event.Event{Type: event.RemoteClusterUpdate, Action: "updated", Name: "cluster1"}, <-events)

		var got model.RemoteCluster
		client.GetJSON(t, "/remoteclusters/cluster1", &got, asUser)
		assert.Equal(t, []string{"HDFS{2.7.0}"}, got.ServiceNames())
		assert.Equal(t, model.RemoteClusterProperties{"webhdfs.url": "webhdfs://namenode:50070"}, got.Services[0].Properties)

		var count int64
		require.NoError(t, db.Model(&model.RemoteClusterProperty{}).Count(&count).Error)
		assert.EqualValues(t, 1, count, "properties of replaced services should be removed")
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		requestBody := strings.NewReader(`{"services": []}`)

		client.Do(t, http.MethodPut, "/remoteclusters/missing", requestBody, http.StatusNotFound, asAdmin, jsonContent)
	})

	t.Run("ReadAll", func(t *testing.T) {
		requestBody := strings.NewReader(`{"name": "another", "services": [{"name": "TEZ"}]}`)
		client.Do(t, http.MethodPost, "/remoteclusters", requestBody, http.StatusBadRequest, asAdmin, jsonContent)
		requestBody = strings.NewReader(`{"name": "another", "services": [{"name": "HIVE{1.2.1}"}]}`)
		client.PostJSON(t, "/remoteclusters", requestBody, &model.RemoteCluster{}, asAdmin)
		<-events

		var clusters []model.RemoteCluster
		client.GetJSON(t, "/remoteclusters", &clusters, asUser)

		require.Len(t, clusters, 2)
		assert.Equal(t, "another", clusters[0].Name)
		assert.Equal(t, "cluster1", clusters[1].Name)
	})

	t.Run("Delete", func(t *testing.T) {
		client.Delete(t, "/remoteclusters/cluster1", asAdmin)

		assert.Equal(t, event.Event{Type: event.RemoteClusterUpdate, Action: "deleted", Name: "cluster1"}, <-events)
		client.Do(t, http.MethodGet, "/remoteclusters/cluster1", nil, http.StatusNotFound, asUser)
		var count int64
		require.NoError(t, db.Model(&model.RemoteClusterService{}).Where("name = ?", "HDFS{2.7.0}").Count(&count).Error)
		assert.Zero(t, count, "services should be deleted with their cluster")
	})
}
