package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"conciergeapi/src/server"
)

var _ = Describe("Info", func() {
	When("requesting the API metadata", func() {
		It("describes the version, endpoints and capabilities", func() {
			// ARRANGE
			logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
			srv := server.NewServer(logger, 0, nil, nil)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/v3/info", nil)

			// ACT
			srv.Info(recorder, request)

			// ASSERT
			Expect(recorder.Code).To(Equal(http.StatusOK))

			var payload map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &payload)).To(Succeed())
			Expect(payload["version"]).To(Equal("3.0"))

			endpoints, ok := payload["endpoints"].(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(endpoints).To(HaveKey("entities"))
			Expect(endpoints).To(HaveKey("curations"))
			Expect(endpoints).To(HaveKey("query"))

			Expect(payload["features"]).NotTo(BeEmpty())
		})
	})
})
