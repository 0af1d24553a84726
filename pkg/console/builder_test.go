package console_test

import (
	"testing"

	"github.com/dhis2-sre/im-remote-cluster/pkg/console"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := map[string]struct {
		name  string
		valid bool
	}{
		"Word":                  {name: "cluster1", valid: true},
		"SurroundingWhitespace": {name: " my_cluster ", valid: true},
		"Punctuation":           {name: "my-cluster!", valid: false},
		"Hash":                  {name: "cluster#1", valid: false},
		"InnerWhitespace":       {name: "my cluster", valid: false},
		"Empty":                 {name: "", valid: false},
		"Blank":                 {name: "   ", valid: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := console.ValidateName(test.name)

			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, console.IsValidationError(err), "want ValidationError, got %v", err)
			}
		})
	}
}

func TestToWireInstance(t *testing.T) {
	services := catalog(
		service("HDFS", "2.7.0", "webhdfs.url", "webhdfs.username"),
		service("HDFS", "3.1.0", "webhdfs.url", "hdfs.nameservices"),
		service("YARN", "2.7.0", "yarn.resourcemanager.url"),
	)
	views := []console.ViewSelection{
		view("FILES", true, "HDFS{2.7.0}", "UNKNOWN"),
		view("TEZ", true, "HDFS{3.1.0}", "YARN{2.7.0}"),
	}
	existing := &model.RemoteCluster{
		Services: []model.RemoteClusterService{
			{Name: "HDFS{2.7.0}", Properties: model.RemoteClusterProperties{"webhdfs.url": "webhdfs://nn:50070", "webhdfs.username": ""}},
			{Name: "HDFS{3.1.0}", Properties: model.RemoteClusterProperties{"hdfs.nameservices": "ns1"}},
		},
	}
	form := console.Rebuild(views, services, nil, existing)

	cluster, err := console.ToWireInstance(" cluster1 ", form)

	require.NoError(t, err)
	hdfs := model.RemoteClusterProperties{"webhdfs.url": "webhdfs://nn:50070", "hdfs.nameservices": "ns1"}
	want := model.RemoteCluster{
		Name: "cluster1",
		Services: []model.RemoteClusterService{
			{Name: "HDFS{2.7.0}", Properties: hdfs},
			{Name: "HDFS{3.1.0}", Properties: hdfs},
			{Name: "YARN{2.7.0}", Properties: model.RemoteClusterProperties{}},
		},
	}
	if diff := cmp.Diff(want, cluster); diff != "" {
		t.Errorf("ToWireInstance() mismatch (-want +got):\n%s", diff)
	}

	t.Run("InvalidName", func(t *testing.T) {
		_, err := console.ToWireInstance("cluster#1", form)

		var validationErr *console.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "name", validationErr.Problems[0].Field)
	})
}

func TestForm_Validate(t *testing.T) {
	hdfs := service("HDFS", "", "webhdfs.url", "webhdfs.username")
	hdfs.Parameters[0].Required = true
	hdfs.Parameters[0].Label = "WebHDFS FileSystem URI"
	services := catalog(hdfs)
	views := []console.ViewSelection{view("FILES", true, "HDFS")}

	t.Run("MissingRequiredParameter", func(t *testing.T) {
		form := console.Rebuild(views, services, nil, nil)

		err := form.Validate("my-cluster!")

		var validationErr *console.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Len(t, validationErr.Problems, 2)
		assert.Equal(t, "name", validationErr.Problems[0].Field)
		assert.Equal(t, console.FieldError{Field: "HDFS/webhdfs.url", Message: "WebHDFS FileSystem URI is required"}, validationErr.Problems[1])
	})

	t.Run("Valid", func(t *testing.T) {
		form := console.Rebuild(views, services, nil, &model.RemoteCluster{
			Services: []model.RemoteClusterService{{Name: "HDFS", Properties: model.RemoteClusterProperties{"webhdfs.url": "webhdfs://nn:50070"}}},
		})

		assert.NoError(t, form.Validate("cluster1"))
	})
}
