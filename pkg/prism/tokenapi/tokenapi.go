// Wire types for the Prism token vending API
//
// The vending host speaks Thrift binary protocol over a framed transport.
// The types here mirror the IDL surface this system uses; unknown fields
// are skipped on read so protocol additions on the host side stay
// compatible.
package tokenapi

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// SessionOptions carries optional sign-in parameters. None are used.
type SessionOptions struct{}

func (p *SessionOptions) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, _, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		if err := iprot.Skip(ctx, fieldTypeID); err != nil {
			return err
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd(ctx)
}

func (p *SessionOptions) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "SessionOptions"); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

// SignInResponse is the result of a successful signInWithPassword call
type SignInResponse struct {
	AccessToken string
}

func (p *SignInResponse) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.STRING:
			if p.AccessToken, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd(ctx)
}

func (p *SignInResponse) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "SignInResponse"); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "accessToken", 1, p.AccessToken); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

// MeterConfig is the meter descriptor sent with an issueCreditToken call
type MeterConfig struct {
	DRN            string
	SGC            int32
	KRN            int32
	TI             int32
	EA             int32
	TCT            int32
	KEN            int32
	AllowKRNUpdate bool
}

func (p *MeterConfig) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.STRING:
			if p.DRN, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 2 && fieldTypeID == thrift.I32:
			if p.SGC, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 3 && fieldTypeID == thrift.I32:
			if p.KRN, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 4 && fieldTypeID == thrift.I32:
			if p.TI, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 5 && fieldTypeID == thrift.I32:
			if p.EA, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 6 && fieldTypeID == thrift.I32:
			if p.TCT, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 7 && fieldTypeID == thrift.I32:
			if p.KEN, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 8 && fieldTypeID == thrift.BOOL:
			if p.AllowKRNUpdate, err = iprot.ReadBool(ctx); err != nil {
				return err
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd(ctx)
}

func (p *MeterConfig) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "MeterConfigIn"); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "drn", 1, p.DRN); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "sgc", 2, p.SGC); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "krn", 3, p.KRN); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "ti", 4, p.TI); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "ea", 5, p.EA); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "tct", 6, p.TCT); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "ken", 7, p.KEN); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin(ctx, "allowKrnUpdate", thrift.BOOL, 8); err != nil {
		return err
	}
	if err := oprot.WriteBool(ctx, p.AllowKRNUpdate); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

// Token is one credit token record returned by the vending host
//
// Dec carries the decimal-digit representation preferred for display, Hex
// the hexadecimal one. At least one of the two is set.
type Token struct {
	Dec      string
	Hex      string
	Class    int32
	Subclass int32
}

func (p *Token) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.STRING:
			if p.Dec, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 2 && fieldTypeID == thrift.STRING:
			if p.Hex, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 3 && fieldTypeID == thrift.I32:
			if p.Class, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 4 && fieldTypeID == thrift.I32:
			if p.Subclass, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd(ctx)
}

func (p *Token) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "Token"); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "tokenDec", 1, p.Dec); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "tokenHex", 2, p.Hex); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "tokenClass", 3, p.Class); err != nil {
		return err
	}
	if err := writeI32Field(ctx, oprot, "tokenSubclass", 4, p.Subclass); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

// Digits returns the preferred display representation of the token
func (p *Token) Digits() string {
	if p.Dec != "" {
		return p.Dec
	}
	return p.Hex
}

// APIError is the structured error the vending host raises for a
// well-formed but refused request
type APIError struct {
	Code      string
	MessageEn string
}

func (p *APIError) Error() string {
	return fmt.Sprintf("prism api error %s: %s", p.Code, p.MessageEn)
}

func (p *APIError) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.STRING:
			if p.Code, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 2 && fieldTypeID == thrift.STRING:
			if p.MessageEn, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd(ctx)
}

func (p *APIError) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "ApiException"); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "eCode", 1, p.Code); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "eMsgEn", 2, p.MessageEn); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

func writeStringField(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v string) error {
	if err := oprot.WriteFieldBegin(ctx, name, thrift.STRING, id); err != nil {
		return err
	}
	if err := oprot.WriteString(ctx, v); err != nil {
		return err
	}
	return oprot.WriteFieldEnd(ctx)
}

func writeI32Field(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v int32) error {
	if err := oprot.WriteFieldBegin(ctx, name, thrift.I32, id); err != nil {
		return err
	}
	if err := oprot.WriteI32(ctx, v); err != nil {
		return err
	}
	return oprot.WriteFieldEnd(ctx)
}

func writeI64Field(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v int64) error {
	if err := oprot.WriteFieldBegin(ctx, name, thrift.I64, id); err != nil {
		return err
	}
	if err := oprot.WriteI64(ctx, v); err != nil {
		return err
	}
	return oprot.WriteFieldEnd(ctx)
}
