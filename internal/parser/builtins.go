package parser

// pythonBuiltins holds the names bound by the Python builtin scope. References
// that resolve here are not free names: a wildcard import never needs to
// provide them, and shadowing ones that a module does export is handled by the
// export side, not the usage side.
var pythonBuiltins = map[string]bool{
	// constants
	"True": true, "False": true, "None": true, "NotImplemented": true,
	"Ellipsis": true, "__debug__": true,

	// module globals present in every namespace
	"__name__": true, "__file__": true, "__doc__": true, "__package__": true,
	"__spec__": true, "__loader__": true, "__builtins__": true,
	"__import__": true, "__build_class__": true,

	// functions
	"abs": true, "aiter": true, "all": true, "anext": true, "any": true,
	"ascii": true, "bin": true, "breakpoint": true, "callable": true,
	"chr": true, "classmethod": true, "compile": true, "delattr": true,
	"dir": true, "divmod": true, "enumerate": true, "eval": true,
	"exec": true, "filter": true, "format": true, "getattr": true,
	"globals": true, "hasattr": true, "hash": true, "help": true,
	"hex": true, "id": true, "input": true, "isinstance": true,
	"issubclass": true, "iter": true, "len": true, "locals": true,
	"map": true, "max": true, "min": true, "next": true, "oct": true,
	"open": true, "ord": true, "pow": true, "print": true, "repr": true,
	"reversed": true, "round": true, "setattr": true, "sorted": true,
	"staticmethod": true, "sum": true, "super": true, "vars": true,
	"zip": true,

	// types
	"bool": true, "bytearray": true, "bytes": true, "complex": true,
	"dict": true, "float": true, "frozenset": true, "int": true,
	"list": true, "memoryview": true, "object": true, "property": true,
	"range": true, "set": true, "slice": true, "str": true,
	"tuple": true, "type": true,

	// exceptions
	"ArithmeticError": true, "AssertionError": true, "AttributeError": true,
	"BaseException": true, "BaseExceptionGroup": true, "BlockingIOError": true,
	"BrokenPipeError": true, "BufferError": true, "BytesWarning": true,
	"ChildProcessError": true, "ConnectionAbortedError": true,
	"ConnectionError": true, "ConnectionRefusedError": true,
	"ConnectionResetError": true, "DeprecationWarning": true, "EOFError": true,
	"EncodingWarning": true, "EnvironmentError": true, "Exception": true,
	"ExceptionGroup": true, "FileExistsError": true, "FileNotFoundError": true,
	"FloatingPointError": true, "FutureWarning": true, "GeneratorExit": true,
	"IOError": true, "ImportError": true, "ImportWarning": true,
	"IndentationError": true, "IndexError": true, "InterruptedError": true,
	"IsADirectoryError": true, "KeyError": true, "KeyboardInterrupt": true,
	"LookupError": true, "MemoryError": true, "ModuleNotFoundError": true,
	"NameError": true, "NotADirectoryError": true, "NotImplementedError": true,
	"OSError": true, "OverflowError": true, "PendingDeprecationWarning": true,
	"PermissionError": true, "ProcessLookupError": true, "RecursionError": true,
	"ReferenceError": true, "ResourceWarning": true, "RuntimeError": true,
	"RuntimeWarning": true, "StopAsyncIteration": true, "StopIteration": true,
	"SyntaxError": true, "SyntaxWarning": true, "SystemError": true,
	"SystemExit": true, "TabError": true, "TimeoutError": true,
	"TypeError": true, "UnboundLocalError": true, "UnicodeDecodeError": true,
	"UnicodeEncodeError": true, "UnicodeError": true,
	"UnicodeTranslateError": true, "UnicodeWarning": true, "UserWarning": true,
	"ValueError": true, "Warning": true, "ZeroDivisionError": true,

	// interactive helpers
	"copyright": true, "credits": true, "license": true, "exit": true,
	"quit": true,
}

// IsBuiltin reports whether name resolves in the Python builtin scope.
func IsBuiltin(name string) bool {
	return pythonBuiltins[name]
}
