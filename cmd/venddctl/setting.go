package main

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rezicom/vendd/pkg/vendd/configstore"
	"github.com/urfave/cli"
)

const settingCommandDescription = `This command manages runtime settings stored in the
principal database. Settings are append-only; setting a name again
supersedes the previous value.`

var settingCommand = cli.Command{
	Name:        "setting",
	ShortName:   "set",
	Usage:       "Runtime setting tools.",
	Description: settingCommandDescription,
	Subcommands: []cli.Command{
		setSettingCommand,
		getSettingCommand,
	},
}

var setSettingCommand = cli.Command{
	Name:      "set",
	Usage:     "Set a named setting. Usage: setting set <name> <value>",
	ArgsUsage: "<name> <value>",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "encrypt, e",
			Usage: "Encrypt the value at rest.",
		},
		cli.Int64Flag{
			Name:  "tenant, t",
			Usage: "Scope the setting to a tenant (vendor) id.",
		},
	},
	Action: setSettingAction,
}

var getSettingCommand = cli.Command{
	Name:      "get",
	Usage:     "Read a named setting. Usage: setting get <name>",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		cli.Int64Flag{
			Name:  "tenant, t",
			Usage: "Read the tenant scoped setting.",
		},
	},
	Action: getSettingAction,
}

func openPrincipalDB() (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.Database.PrincipalDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func settingCodec() (*configstore.Codec, error) {
	if cfg.EncryptionPassphrase == "" {
		return nil, fmt.Errorf("no encryption passphrase configured")
	}
	return configstore.NewCodec(cfg.EncryptionPassphrase)
}

func setSettingAction(c *cli.Context) error {
	if c.NArg() != 2 {
		fmt.Print("expected a name and a value\n\n")
		cli.ShowCommandHelp(c, "set")
		return nil
	}
	if !readConfig(c) {
		return nil
	}
	name, value := c.Args().Get(0), c.Args().Get(1)

	entry := configstore.Entry{
		Name:     name,
		Value:    value,
		TenantID: c.Int64("tenant"),
	}
	if c.Bool("encrypt") {
		codec, err := settingCodec()
		if err != nil {
			fmt.Printf("error preparing encryption: %v\n", err)
			return nil
		}
		entry.Value, err = codec.Encrypt(value)
		if err != nil {
			fmt.Printf("error encrypting value: %v\n", err)
			return nil
		}
		entry.Encrypted = true
	}

	db, err := openPrincipalDB()
	if err != nil {
		fmt.Printf("error connecting to principal database: %v\n", err)
		return nil
	}
	defer db.Close()

	if err := configstore.InsertEntryDB(db, entry); err != nil {
		fmt.Printf("error saving setting %s: %v\n", name, err)
		return nil
	}
	fmt.Printf("setting %s saved.\n", name)
	return nil
}

func getSettingAction(c *cli.Context) error {
	if c.NArg() != 1 {
		fmt.Print("expected a name\n\n")
		cli.ShowCommandHelp(c, "get")
		return nil
	}
	if !readConfig(c) {
		return nil
	}
	name := c.Args().Get(0)

	db, err := openPrincipalDB()
	if err != nil {
		fmt.Printf("error connecting to principal database: %v\n", err)
		return nil
	}
	defer db.Close()

	var entry configstore.Entry
	if tenant := c.Int64("tenant"); tenant != 0 {
		entry, err = configstore.EntryByNameForTenantDB(db, name, tenant)
	} else {
		entry, err = configstore.EntryByNameDB(db, name)
	}
	if err == configstore.ErrEntryNotFound {
		fmt.Printf("setting %s is not set.\n", name)
		return nil
	}
	if err != nil {
		fmt.Printf("error reading setting %s: %v\n", name, err)
		return nil
	}

	value := entry.Value
	if entry.Encrypted {
		codec, err := settingCodec()
		if err != nil {
			fmt.Printf("error preparing decryption: %v\n", err)
			return nil
		}
		value, err = codec.Decrypt(entry.Value)
		if err != nil {
			fmt.Printf("error decrypting setting %s: %v\n", name, err)
			return nil
		}
	}
	fmt.Printf("%s = %s (changed %s)\n", name, value, entry.LastChange().Format("2006-01-02 15:04:05"))
	return nil
}
