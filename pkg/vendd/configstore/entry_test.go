package configstore

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCodec(t *testing.T) {
	Convey("Given a codec", t, func() {
		codec, err := NewCodec("test passphrase")
		So(err, ShouldBeNil)

		Convey("Encrypting and decrypting should round-trip", func() {
			sealed, err := codec.Encrypt("hjN98Jk7")
			So(err, ShouldBeNil)
			So(sealed, ShouldNotEqual, "hjN98Jk7")

			plain, err := codec.Decrypt(sealed)
			So(err, ShouldBeNil)
			So(plain, ShouldEqual, "hjN98Jk7")
		})

		Convey("A codec with the same passphrase should decrypt the value", func() {
			sealed, err := codec.Encrypt("secret")
			So(err, ShouldBeNil)

			other, err := NewCodec("test passphrase")
			So(err, ShouldBeNil)
			plain, err := other.Decrypt(sealed)
			So(err, ShouldBeNil)
			So(plain, ShouldEqual, "secret")
		})

		Convey("A codec with a different passphrase should fail to decrypt", func() {
			sealed, err := codec.Encrypt("secret")
			So(err, ShouldBeNil)

			other, err := NewCodec("wrong passphrase")
			So(err, ShouldBeNil)
			_, err = other.Decrypt(sealed)
			So(err, ShouldNotBeNil)
		})

		Convey("Decrypting garbage should fail", func() {
			_, err := codec.Decrypt("AA==")
			So(err, ShouldEqual, ErrCiphertextTooShort)
		})
	})
}

func TestResolver(t *testing.T) {
	Convey("Given a database mock connection and a codec", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		Reset(func() {
			db.Close()
		})

		codec, err := NewCodec("test passphrase")
		So(err, ShouldBeNil)
		resolver := NewResolver(db, codec)

		entryColumns := []string{"name", "last_change", "value", "encrypted", "tenant_id"}

		Convey("When the setting is present", func() {
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_env").
				WillReturnRows(sqlmock.NewRows(entryColumns).
					AddRow("mpesa_env", 1, "live", false, 0))

			v, err := resolver.Value("mpesa_env", "sandbox")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "live")
		})

		Convey("When the setting is absent", func() {
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_env").
				WillReturnRows(sqlmock.NewRows(entryColumns))

			v, err := resolver.Value("mpesa_env", "sandbox")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "sandbox")
		})

		Convey("When the setting is encrypted", func() {
			sealed, err := codec.Encrypt("s3cret")
			So(err, ShouldBeNil)
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_consumer_secret").
				WillReturnRows(sqlmock.NewRows(entryColumns).
					AddRow("mpesa_consumer_secret", 1, sealed, true, 0))

			v, err := resolver.Value("mpesa_consumer_secret", "")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "s3cret")
		})

		Convey("When the setting cannot be decrypted", func() {
			other, err := NewCodec("wrong passphrase")
			So(err, ShouldBeNil)
			sealed, err := other.Encrypt("s3cret")
			So(err, ShouldBeNil)
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_consumer_secret").
				WillReturnRows(sqlmock.NewRows(entryColumns).
					AddRow("mpesa_consumer_secret", 1, sealed, true, 0))

			_, err = resolver.Value("mpesa_consumer_secret", "")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "mpesa_consumer_secret")
		})

		Convey("When the setting is encrypted and no codec is configured", func() {
			bare := NewResolver(db, nil)
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_passkey").
				WillReturnRows(sqlmock.NewRows(entryColumns).
					AddRow("mpesa_passkey", 1, "AAECAw==", true, 0))

			_, err := bare.Value("mpesa_passkey", "")
			So(err, ShouldNotBeNil)
		})

		Convey("When a tenant override exists", func() {
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_shortcode", int64(42)).
				WillReturnRows(sqlmock.NewRows(entryColumns).
					AddRow("mpesa_shortcode", 1, "555555", false, 42))

			v, err := resolver.ValueForTenant("mpesa_shortcode", 42, "")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "555555")
		})

		Convey("When no tenant override exists", func() {
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_shortcode", int64(42)).
				WillReturnRows(sqlmock.NewRows(entryColumns))
			mock.ExpectQuery("SELECT(.+)FROM system_config").
				WithArgs("mpesa_shortcode").
				WillReturnRows(sqlmock.NewRows(entryColumns).
					AddRow("mpesa_shortcode", 1, "174379", false, 0))

			v, err := resolver.ValueForTenant("mpesa_shortcode", 42, "")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "174379")
		})
	})
}
