package tokenapi

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// Client calls the token vending service over an established protocol pair
type Client struct {
	c thrift.TClient
}

// NewClient wraps the given thrift client
func NewClient(c thrift.TClient) *Client {
	return &Client{c: c}
}

// NewClientFromProtocol builds a client on a standard request/response
// exchange over the given input and output protocols
func NewClientFromProtocol(iprot, oprot thrift.TProtocol) *Client {
	return &Client{c: thrift.NewTStandardClient(iprot, oprot)}
}

// SignInWithPassword authenticates against the vending host and returns
// the session access token
func (c *Client) SignInWithPassword(ctx context.Context, msgID, realm, username, password string, options *SessionOptions) (*SignInResponse, error) {
	args := signInWithPasswordArgs{
		MsgID:    msgID,
		Realm:    realm,
		Username: username,
		Password: password,
		Options:  options,
	}
	var result signInWithPasswordResult
	if _, err := c.c.Call(ctx, "signInWithPassword", &args, &result); err != nil {
		return nil, err
	}
	if result.Err != nil {
		return nil, result.Err
	}
	if result.Success == nil {
		return nil, thrift.NewTApplicationException(thrift.MISSING_RESULT, "signInWithPassword failed: unknown result")
	}
	return result.Success, nil
}

// IssueCreditToken requests credit tokens for the given meter and amount
func (c *Client) IssueCreditToken(ctx context.Context, msgID, accessToken string, meter *MeterConfig, subclass int32, amount, tokenTime, flags int64) ([]*Token, error) {
	args := issueCreditTokenArgs{
		MsgID:       msgID,
		AccessToken: accessToken,
		Meter:       meter,
		Subclass:    subclass,
		Amount:      amount,
		TokenTime:   tokenTime,
		Flags:       flags,
	}
	var result issueCreditTokenResult
	if _, err := c.c.Call(ctx, "issueCreditToken", &args, &result); err != nil {
		return nil, err
	}
	if result.Err != nil {
		return nil, result.Err
	}
	if result.Success == nil {
		return nil, thrift.NewTApplicationException(thrift.MISSING_RESULT, "issueCreditToken failed: unknown result")
	}
	return result.Success, nil
}

type signInWithPasswordArgs struct {
	MsgID    string
	Realm    string
	Username string
	Password string
	Options  *SessionOptions
}

func (p *signInWithPasswordArgs) Read(ctx context.Context, iprot thrift.TProtocol) error {
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
			if p.MsgID, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 2 && fieldTypeID == thrift.STRING:
			if p.Realm, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 3 && fieldTypeID == thrift.STRING:
			if p.Username, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 4 && fieldTypeID == thrift.STRING:
			if p.Password, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 5 && fieldTypeID == thrift.STRUCT:
			p.Options = &SessionOptions{}
			if err := p.Options.Read(ctx, iprot); err != nil {
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

func (p *signInWithPasswordArgs) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "signInWithPassword_args"); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "msgid", 1, p.MsgID); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "realm", 2, p.Realm); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "username", 3, p.Username); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "password", 4, p.Password); err != nil {
		return err
	}
	if p.Options != nil {
		if err := oprot.WriteFieldBegin(ctx, "options", thrift.STRUCT, 5); err != nil {
			return err
		}
		if err := p.Options.Write(ctx, oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

type signInWithPasswordResult struct {
	Success *SignInResponse
	Err     *APIError
}

func (p *signInWithPasswordResult) Read(ctx context.Context, iprot thrift.TProtocol) error {
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
		case fieldID == 0 && fieldTypeID == thrift.STRUCT:
			p.Success = &SignInResponse{}
			if err := p.Success.Read(ctx, iprot); err != nil {
				return err
			}
		case fieldID == 1 && fieldTypeID == thrift.STRUCT:
			p.Err = &APIError{}
			if err := p.Err.Read(ctx, iprot); err != nil {
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

func (p *signInWithPasswordResult) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "signInWithPassword_result"); err != nil {
		return err
	}
	if p.Success != nil {
		if err := oprot.WriteFieldBegin(ctx, "success", thrift.STRUCT, 0); err != nil {
			return err
		}
		if err := p.Success.Write(ctx, oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if p.Err != nil {
		if err := oprot.WriteFieldBegin(ctx, "e", thrift.STRUCT, 1); err != nil {
			return err
		}
		if err := p.Err.Write(ctx, oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

type issueCreditTokenArgs struct {
	MsgID       string
	AccessToken string
	Meter       *MeterConfig
	Subclass    int32
	Amount      int64
	TokenTime   int64
	Flags       int64
}

func (p *issueCreditTokenArgs) Read(ctx context.Context, iprot thrift.TProtocol) error {
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
			if p.MsgID, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 2 && fieldTypeID == thrift.STRING:
			if p.AccessToken, err = iprot.ReadString(ctx); err != nil {
				return err
			}
		case fieldID == 3 && fieldTypeID == thrift.STRUCT:
			p.Meter = &MeterConfig{}
			if err := p.Meter.Read(ctx, iprot); err != nil {
				return err
			}
		case fieldID == 4 && fieldTypeID == thrift.I32:
			if p.Subclass, err = iprot.ReadI32(ctx); err != nil {
				return err
			}
		case fieldID == 5 && fieldTypeID == thrift.I64:
			if p.Amount, err = iprot.ReadI64(ctx); err != nil {
				return err
			}
		case fieldID == 6 && fieldTypeID == thrift.I64:
			if p.TokenTime, err = iprot.ReadI64(ctx); err != nil {
				return err
			}
		case fieldID == 7 && fieldTypeID == thrift.I64:
			if p.Flags, err = iprot.ReadI64(ctx); err != nil {
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

func (p *issueCreditTokenArgs) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "issueCreditToken_args"); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "msgid", 1, p.MsgID); err != nil {
		return err
	}
	if err := writeStringField(ctx, oprot, "accessToken", 2, p.AccessToken); err != nil {
		return err
	}
	if p.Meter != nil {
		if err := oprot.WriteFieldBegin(ctx, "meterConfig", thrift.STRUCT, 3); err != nil {
			return err
		}
		if err := p.Meter.Write(ctx, oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := writeI32Field(ctx, oprot, "subclass", 4, p.Subclass); err != nil {
		return err
	}
	if err := writeI64Field(ctx, oprot, "amount", 5, p.Amount); err != nil {
		return err
	}
	if err := writeI64Field(ctx, oprot, "tokenTime", 6, p.TokenTime); err != nil {
		return err
	}
	if err := writeI64Field(ctx, oprot, "flags", 7, p.Flags); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

type issueCreditTokenResult struct {
	Success []*Token
	Err     *APIError
}

func (p *issueCreditTokenResult) Read(ctx context.Context, iprot thrift.TProtocol) error {
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
		case fieldID == 0 && fieldTypeID == thrift.LIST:
			_, size, err := iprot.ReadListBegin(ctx)
			if err != nil {
				return err
			}
			p.Success = make([]*Token, 0, size)
			for i := 0; i < size; i++ {
				tok := &Token{}
				if err := tok.Read(ctx, iprot); err != nil {
					return err
				}
				p.Success = append(p.Success, tok)
			}
			if err := iprot.ReadListEnd(ctx); err != nil {
				return err
			}
		case fieldID == 1 && fieldTypeID == thrift.STRUCT:
			p.Err = &APIError{}
			if err := p.Err.Read(ctx, iprot); err != nil {
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

func (p *issueCreditTokenResult) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "issueCreditToken_result"); err != nil {
		return err
	}
	if p.Success != nil {
		if err := oprot.WriteFieldBegin(ctx, "success", thrift.LIST, 0); err != nil {
			return err
		}
		if err := oprot.WriteListBegin(ctx, thrift.STRUCT, len(p.Success)); err != nil {
			return err
		}
		for _, tok := range p.Success {
			if err := tok.Write(ctx, oprot); err != nil {
				return err
			}
		}
		if err := oprot.WriteListEnd(ctx); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if p.Err != nil {
		if err := oprot.WriteFieldBegin(ctx, "e", thrift.STRUCT, 1); err != nil {
			return err
		}
		if err := p.Err.Write(ctx, oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}
