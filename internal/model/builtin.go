package model

import "strings"

// reservedPrefixes are standard-library namespaces. Types resolving into
// them are assumed to exist on any classpath and are never planned as stubs.
var reservedPrefixes = []string{
	"java.",
	"javax.",
	"jdk.",
	"sun.",
	"com.sun.",
}

// IsReservedPackage reports whether pkg belongs to a standard-library
// namespace (or is "java"/"javax" itself).
func IsReservedPackage(pkg string) bool {
	if pkg == "" {
		return false
	}

	for _, p := range reservedPrefixes {
		if pkg == strings.TrimSuffix(p, ".") || strings.HasPrefix(pkg, p) {
			return true
		}
	}

	return false
}

// IsReservedFQN reports whether fqn names a type inside a standard-library
// namespace.
func IsReservedFQN(fqn string) bool {
	pkg, _ := splitFQN(fqn)
	return IsReservedPackage(pkg)
}

func splitFQN(fqn string) (pkg, rest string) {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i], fqn[i+1:]
	}

	return "", fqn
}

// javaLangTypes maps simple names implicitly importable from java.lang.
// A bare reference to one of these always resolves without a stub.
var javaLangTypes = map[string]bool{
	"Object": true, "String": true, "System": true, "Math": true,
	"Integer": true, "Long": true, "Short": true, "Byte": true,
	"Double": true, "Float": true, "Boolean": true, "Character": true,
	"Number": true, "Void": true, "Class": true, "ClassLoader": true,
	"Enum": true, "Iterable": true, "Comparable": true, "CharSequence": true,
	"Runnable": true, "Thread": true, "ThreadLocal": true,
	"StringBuilder": true, "StringBuffer": true, "AutoCloseable": true,
	"Throwable": true, "Exception": true, "RuntimeException": true,
	"Error": true, "IllegalArgumentException": true,
	"IllegalStateException": true, "NullPointerException": true,
	"UnsupportedOperationException": true, "IndexOutOfBoundsException": true,
	"ArithmeticException": true, "ClassCastException": true,
	"InterruptedException": true, "CloneNotSupportedException": true,
	"Override": true, "Deprecated": true, "SuppressWarnings": true,
	"SafeVarargs": true, "FunctionalInterface": true,
}

// IsJavaLangType reports whether a bare simple name resolves implicitly to
// java.lang.
func IsJavaLangType(simple string) bool {
	return javaLangTypes[simple]
}
