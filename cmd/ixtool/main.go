// ixtool is a command-line driver for the ix index engine: create/destroy
// a file, insert/delete single entries, scan a range, and print the tree
// for debugging.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/wwu39/IX"
	"github.com/wwu39/IX/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logrus.SetLevel(logrus.InfoLevel)

	var err error
	switch os.Args[1] {
	case "create":
		err = runCreate(os.Args[2:])
	case "destroy":
		err = runDestroy(os.Args[2:])
	case "insert":
		err = runInsert(os.Args[2:])
	case "delete":
		err = runDelete(os.Args[2:])
	case "scan":
		err = runScan(os.Args[2:])
	case "print":
		err = runPrint(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		logrus.WithError(err).Error("ixtool: command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ixtool <create|destroy|insert|delete|scan|print|stats> [flags]")
}

func attrFlags(fs *flag.FlagSet) (name *string, typ *string, length *uint) {
	name = fs.String("attr", "key", "attribute name")
	typ = fs.String("type", "int", "attribute type: int|real|varchar")
	length = fs.Uint("length", 255, "max VarChar length (ignored for int/real)")
	return
}

func parseAttrType(s string) (storage.AttrType, error) {
	switch s {
	case "int":
		return storage.AttrInt, nil
	case "real":
		return storage.AttrReal, nil
	case "varchar":
		return storage.AttrVarChar, nil
	default:
		return 0, fmt.Errorf("unknown attribute type %q", s)
	}
}

func parseKey(t storage.AttrType, s string) (storage.Key, error) {
	switch t {
	case storage.AttrInt:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return storage.Key{}, err
		}
		return storage.IntKey(int32(v)), nil
	case storage.AttrReal:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return storage.Key{}, err
		}
		return storage.RealKey(float32(v)), nil
	default:
		return storage.VarCharKey([]byte(s)), nil
	}
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ixtool create <path>")
	}
	return ix.Create(fs.Arg(0))
}

func runDestroy(args []string) error {
	fs := flag.NewFlagSet("destroy", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ixtool destroy <path>")
	}
	return ix.Destroy(fs.Arg(0))
}

func runInsert(args []string) error {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	name, typ, length := attrFlags(fs)
	page := fs.Uint("page", 0, "RID page number")
	slot := fs.Uint("slot", 0, "RID slot number")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ixtool insert [flags] <path> <key>")
	}
	attrType, err := parseAttrType(*typ)
	if err != nil {
		return err
	}
	key, err := parseKey(attrType, fs.Arg(1))
	if err != nil {
		return err
	}

	idx, err := ix.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer idx.Close()

	attr := storage.Attribute{Name: *name, Type: attrType, Length: uint32(*length)}
	rid := storage.RID{PageNum: uint32(*page), SlotNum: uint32(*slot)}
	return idx.InsertEntry(attr, key, rid)
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	name, typ, length := attrFlags(fs)
	page := fs.Uint("page", 0, "RID page number")
	slot := fs.Uint("slot", 0, "RID slot number")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ixtool delete [flags] <path> <key>")
	}
	attrType, err := parseAttrType(*typ)
	if err != nil {
		return err
	}
	key, err := parseKey(attrType, fs.Arg(1))
	if err != nil {
		return err
	}

	idx, err := ix.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer idx.Close()

	attr := storage.Attribute{Name: *name, Type: attrType, Length: uint32(*length)}
	rid := storage.RID{PageNum: uint32(*page), SlotNum: uint32(*slot)}
	return idx.DeleteEntry(attr, key, rid)
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	name, typ, length := attrFlags(fs)
	low := fs.String("low", "", "low bound key (empty = unbounded)")
	high := fs.String("high", "", "high bound key (empty = unbounded)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ixtool scan [flags] <path>")
	}
	attrType, err := parseAttrType(*typ)
	if err != nil {
		return err
	}

	idx, err := ix.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer idx.Close()

	var lowKey, highKey *storage.Key
	if *low != "" {
		k, err := parseKey(attrType, *low)
		if err != nil {
			return err
		}
		lowKey = &k
	}
	if *high != "" {
		k, err := parseKey(attrType, *high)
		if err != nil {
			return err
		}
		highKey = &k
	}

	attr := storage.Attribute{Name: *name, Type: attrType, Length: uint32(*length)}
	it, err := idx.Scan(attr, lowKey, highKey, true, true)
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		key, rid, err := it.NextEntry()
		if err != nil {
			break
		}
		fmt.Printf("%v -> (%d,%d)\n", keyString(key), rid.PageNum, rid.SlotNum)
	}
	return nil
}

func keyString(k storage.Key) string {
	switch k.Type {
	case storage.AttrInt:
		return strconv.FormatInt(int64(k.IntVal), 10)
	case storage.AttrReal:
		return strconv.FormatFloat(float64(k.RealVal), 'g', -1, 32)
	default:
		return string(k.StrVal)
	}
}

func runPrint(args []string) error {
	fs := flag.NewFlagSet("print", flag.ExitOnError)
	name, typ, length := attrFlags(fs)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ixtool print [flags] <path>")
	}
	attrType, err := parseAttrType(*typ)
	if err != nil {
		return err
	}

	idx, err := ix.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer idx.Close()

	attr := storage.Attribute{Name: *name, Type: attrType, Length: uint32(*length)}
	return idx.PrintBtree(attr, os.Stdout)
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ixtool stats <path>")
	}

	idx, err := ix.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer idx.Close()

	reads, writes, appends := idx.CollectCounterValues()
	fmt.Printf("reads=%d writes=%d appends=%d\n", reads, writes, appends)
	return nil
}
