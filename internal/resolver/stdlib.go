// # internal/resolver/stdlib.go
package resolver

import "strings"

// Top-level standard library module names. Dotted entries also register
// their base name, e.g. urllib.request -> urllib.
var pythonStdlibModules = []string{
	"abc", "argparse", "array", "ast", "asyncio", "atexit", "base64",
	"bisect", "builtins", "bz2", "calendar", "cmath", "codecs",
	"collections", "collections.abc", "concurrent.futures", "configparser",
	"contextlib", "contextvars", "copy", "csv", "ctypes", "dataclasses",
	"datetime", "decimal", "difflib", "dis", "doctest", "email", "enum",
	"errno", "fcntl", "filecmp", "fnmatch", "fractions", "functools",
	"gc", "getpass", "gettext", "glob", "graphlib", "gzip", "hashlib",
	"heapq", "hmac", "html", "http", "importlib", "inspect", "io",
	"ipaddress", "itertools", "json", "keyword", "linecache", "locale",
	"logging", "lzma", "math", "mimetypes", "multiprocessing", "numbers",
	"operator", "os", "os.path", "pathlib", "pickle", "platform",
	"pprint", "queue", "random", "re", "reprlib", "sched", "secrets",
	"select", "selectors", "shlex", "shutil", "signal", "site", "socket",
	"socketserver", "sqlite3", "ssl", "stat", "statistics", "string",
	"struct", "subprocess", "sys", "sysconfig", "tarfile", "tempfile",
	"textwrap", "threading", "time", "timeit", "token", "tokenize",
	"tomllib", "traceback", "types", "typing", "unicodedata", "unittest",
	"urllib", "urllib.parse", "urllib.request", "uuid", "venv",
	"warnings", "weakref", "xml", "zipfile", "zlib", "zoneinfo",
}

var pythonKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

var pythonBuiltins = []string{
	"ArithmeticError", "AssertionError", "AttributeError", "BaseException",
	"BaseExceptionGroup", "BytesWarning", "DeprecationWarning", "EOFError",
	"Ellipsis", "Exception", "ExceptionGroup", "FileExistsError",
	"FileNotFoundError", "FloatingPointError", "GeneratorExit",
	"ImportError", "IndentationError", "IndexError", "InterruptedError",
	"IsADirectoryError", "KeyError", "KeyboardInterrupt", "LookupError",
	"MemoryError", "ModuleNotFoundError", "NameError", "NotADirectoryError",
	"NotImplemented", "NotImplementedError", "OSError", "OverflowError",
	"PermissionError", "ProcessLookupError", "RecursionError",
	"ReferenceError", "RuntimeError", "RuntimeWarning", "StopAsyncIteration",
	"StopIteration", "SyntaxError", "SyntaxWarning", "SystemError",
	"SystemExit", "TabError", "TimeoutError", "TypeError",
	"UnboundLocalError", "UnicodeDecodeError", "UnicodeEncodeError",
	"UnicodeError", "UserWarning", "ValueError", "Warning",
	"ZeroDivisionError", "abs", "all", "any", "ascii", "bin", "bool",
	"breakpoint", "bytearray", "bytes", "callable", "chr", "classmethod",
	"compile", "complex", "delattr", "dict", "dir", "divmod", "enumerate",
	"eval", "exec", "filter", "float", "format", "frozenset", "getattr",
	"globals", "hasattr", "hash", "help", "hex", "id", "input", "int",
	"isinstance", "issubclass", "iter", "len", "list", "locals", "map",
	"max", "memoryview", "min", "next", "object", "oct", "open", "ord",
	"pow", "print", "property", "range", "repr", "reversed", "round",
	"self", "set", "setattr", "slice", "sorted", "staticmethod", "str",
	"sum", "super", "tuple", "type", "vars", "zip",
}

var (
	pythonStdlib = map[string]bool{}
	builtinNames = map[string]bool{}
)

func init() {
	for _, name := range pythonStdlibModules {
		pythonStdlib[name] = true
		parts := strings.Split(name, ".")
		pythonStdlib[parts[0]] = true
	}
	for _, name := range pythonKeywords {
		builtinNames[name] = true
	}
	for _, name := range pythonBuiltins {
		builtinNames[name] = true
	}
}

// IsStdlibModule reports whether the first segment of a dotted name is a
// standard library module.
func IsStdlibModule(name string) bool {
	first, _, _ := strings.Cut(name, ".")
	return pythonStdlib[first]
}

// IsBuiltin reports whether a bare name is a keyword or a builtin.
func IsBuiltin(name string) bool {
	return builtinNames[name]
}
