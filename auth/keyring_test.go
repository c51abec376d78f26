package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestToken(t *testing.T) {
	keyring.MockInit()

	Convey("Given an empty keyring", t, func() {
		_ = DeleteToken()

		Convey("Token is empty", func() {
			So(Token(), ShouldBeEmpty)
		})

		Convey("A stored token is returned until deleted", func() {
			So(SetToken("abc123"), ShouldBeNil)
			So(Token(), ShouldEqual, "abc123")

			So(DeleteToken(), ShouldBeNil)
			So(Token(), ShouldBeEmpty)
		})
	})
}
