package rules

// Builtins returns the built-in rule catalog, one rule cluster per
// documented vulnerability category. Order here is registration order
// and therefore part of the stable finding sort.
func Builtins() []Rule {
	return []Rule{
		{
			APIVersion:  APIVersion,
			ID:          "injection",
			Name:        "Injection",
			Category:    "injection",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "critical",
			CWE:         "CWE-89",
			Description: "SQL, command, and code injection through untrusted data reaching an interpreter.",
			Remediation: "Use parameterized queries or safe APIs; never build interpreter input by string concatenation.",
			Languages:   []string{"javascript", "typescript", "java", "php", "python", "ruby", "csharp", "go"},
			Detectors: []Detector{
				{
					ID:          "sql-string-concat",
					Kind:        DetectorRegex,
					Pattern:     `(?i)("(?:select|insert|update|delete|drop)\b[^"\n]*"|'(?:select|insert|update|delete|drop)\b[^'\n]*')\s*\+`,
					Message:     "SQL statement built by string concatenation",
					Severity:    "critical",
					Remediation: "Bind user input with placeholders (prepared statements) instead of concatenating it into the query text.",
				},
				{
					ID:          "sql-string-format",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\.(execute|query)\s*\(\s*(f["']|["'][^"'\n]*["']\s*%|["'][^"'\n]*["']\s*\.\s*format\s*\()`,
					Message:     "Query executed with string formatting instead of bound parameters",
					Severity:    "critical",
					Remediation: "Pass user values as a separate parameter tuple; keep the statement text constant.",
				},
				{
					ID:          "shell-command-concat",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\b(system|popen|shell_exec|passthru|proc_open|execSync|exec)\s*\([^)\n]*(\+|\$\{|\$_|%s)`,
					Message:     "Shell command assembled from dynamic input",
					Severity:    "critical",
					Remediation: "Invoke the program with an argument vector (execFile/subprocess list form) rather than an interpolated shell string.",
				},
				{
					ID:          "eval-usage",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\beval\s*\(`,
					Message:     "eval() on data that may be attacker-controlled",
					Severity:    "high",
					Remediation: "Replace eval with a purpose-built parser (JSON.parse, ast.literal_eval) or a dispatch table.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "authentication",
			Name:        "Broken Authentication",
			Category:    "authentication",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "high",
			CWE:         "CWE-798",
			Description: "Hardcoded credentials and weak password hashing.",
			Remediation: "Load secrets from the environment or a vault; hash passwords with bcrypt, scrypt, or argon2.",
			Languages:   []string{"*"},
			Detectors: []Detector{
				{
					ID:          "hardcoded-credentials",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\b(password|passwd|pwd|secret|api[_-]?key|access[_-]?token)\b\s*[:=]\s*["'][^"'\n]{8,}["']`,
					Unless:      `(?i)(getenv|process\.env|os\.environ|environ\[|\$\{|config\.|example|placeholder|changeme)`,
					Message:     "Credential value hardcoded in source",
					Severity:    "high",
					Remediation: "Move the secret to environment configuration or a secrets manager and rotate the exposed value.",
				},
				{
					ID:          "weak-password-hash",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\b(md5|sha1)\s*\([^)\n]*(pass|pwd|credential)`,
					Message:     "Password hashed with a broken digest",
					Severity:    "high",
					Remediation: "Use an adaptive password hash (bcrypt/scrypt/argon2) with a per-user salt.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "authorization",
			Name:        "Broken Authorization",
			Category:    "authorization",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "high",
			CWE:         "CWE-639",
			Description: "Object references resolved straight from request input without an ownership check.",
			Remediation: "Authorize every object access against the authenticated principal, not just the identifier.",
			Languages:   []string{"javascript", "typescript", "java", "php", "python", "ruby", "csharp"},
			Detectors: []Detector{
				{
					ID:          "direct-object-reference",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(findById|find_by_id|getById|load)\s*\(\s*(req\.(params|query|body)|request\.(args|GET|POST)|\$_(GET|POST|REQUEST)|params\[)`,
					Message:     "Record fetched by a client-supplied identifier with no ownership check in sight",
					Severity:    "high",
					Remediation: "Scope the lookup to the current user (e.g. WHERE id = ? AND owner_id = ?) or verify ownership after the fetch.",
				},
				{
					ID:          "client-side-role-check",
					Kind:        DetectorRegex,
					Pattern:     `(?i)if\s*\(\s*(user|req\.user|session)\.(role|isAdmin|is_admin)\s*===?\s*["']`,
					Unless:      `(?i)(middleware|server|guard)`,
					Message:     "Role comparison against a string literal as the only gate",
					Severity:    "medium",
					Remediation: "Enforce authorization server-side in shared middleware; treat any client-held role claim as advisory only.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "xml",
			Name:        "Unsafe XML Handling",
			Category:    "xml",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "high",
			CWE:         "CWE-611",
			Description: "External entity expansion and DTD processing left enabled on XML parsers.",
			Remediation: "Disable DTDs and external entity resolution before parsing untrusted XML.",
			Languages:   []string{"java", "php", "python", "csharp", "javascript", "typescript", "config"},
			Detectors: []Detector{
				{
					ID:          "external-entity-decl",
					Kind:        DetectorContains,
					Pattern:     "<!ENTITY",
					Message:     "Inline DTD entity declaration in XML payload",
					Severity:    "high",
					Remediation: "Reject documents carrying DTDs, or parse with doctype declarations disallowed.",
				},
				{
					ID:          "entities-enabled",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(external-general-entities["']\s*,\s*true|setExpandEntityReferences\s*\(\s*true|libxml_disable_entity_loader\s*\(\s*false|resolve_entities\s*=\s*True|LIBXML_NOENT)`,
					Message:     "XML parser configured to expand external entities",
					Severity:    "high",
					Remediation: "Set disallow-doctype-decl, disable entity expansion, and drop LIBXML_NOENT/resolve_entities flags.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "redos",
			Name:        "Regular Expression Denial of Service",
			Category:    "redos",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "medium",
			CWE:         "CWE-1333",
			Description: "Regex literals with nested quantifiers that backtrack catastrophically on crafted input.",
			Remediation: "Rewrite the expression without nested quantifiers, or match with a linear-time engine.",
			Languages:   []string{"javascript", "typescript", "java", "php", "python", "ruby", "csharp"},
			Detectors: []Detector{
				{
					ID:            "nested-quantifier",
					Kind:          DetectorRegex,
					Pattern:       `\((?:[^()\n|]*[+*])\)[+*]`,
					CaseSensitive: true,
					Message:       "Regex group with a quantifier is itself quantified",
					Severity:      "medium",
					Remediation:   "Collapse the nesting (e.g. (a+)+ to a+) or bound the repetition explicitly.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "csrf",
			Name:        "Cross-Site Request Forgery",
			Category:    "csrf",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "high",
			CWE:         "CWE-352",
			Description: "State-changing endpoints with CSRF protection disabled or exempted.",
			Remediation: "Keep framework CSRF protection on and pair it with SameSite cookies.",
			Languages:   []string{"javascript", "typescript", "java", "php", "python", "ruby", "config"},
			Detectors: []Detector{
				{
					ID:          "csrf-disabled",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(csrf\(\)\s*\.\s*disable\(\)|csrf[_-]?(protection|enabled|check)?\s*[:=]\s*false|WTF_CSRF_ENABLED\s*=\s*False)`,
					Message:     "CSRF protection switched off",
					Severity:    "high",
					Remediation: "Re-enable CSRF protection; exempt individual safe endpoints instead of disabling it globally.",
				},
				{
					ID:          "csrf-exempt",
					Kind:        DetectorRegex,
					Pattern:     `(?i)@csrf_exempt`,
					Message:     "View exempted from CSRF validation",
					Severity:    "medium",
					Remediation: "Remove the exemption or restrict the view to token-authenticated, non-browser clients.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "deserialization",
			Name:        "Insecure Deserialization",
			Category:    "deserialization",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "critical",
			CWE:         "CWE-502",
			Description: "Native deserialization of untrusted bytes, which commonly yields remote code execution.",
			Remediation: "Deserialize untrusted data only with data-only formats (JSON) or hardened, allow-listed loaders.",
			Languages:   []string{"java", "php", "python", "javascript", "typescript", "ruby"},
			Detectors: []Detector{
				{
					ID:          "pickle-load",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\bpickle\.loads?\s*\(`,
					Message:     "pickle deserialization of external data",
					Severity:    "critical",
					Remediation: "Switch to json or another data-only format; pickle executes arbitrary bytecode on load.",
				},
				{
					ID:          "yaml-unsafe-load",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\byaml\.load\s*\(`,
					Unless:      `(?i)(SafeLoader|safe_load)`,
					Message:     "yaml.load without SafeLoader",
					Severity:    "high",
					Remediation: "Use yaml.safe_load or pass Loader=yaml.SafeLoader.",
				},
				{
					ID:          "java-object-stream",
					Kind:        DetectorRegex,
					Pattern:     `new\s+ObjectInputStream\s*\(`,
					CaseSensitive: true,
					Message:     "ObjectInputStream over an untrusted stream",
					Severity:    "critical",
					Remediation: "Avoid Java native serialization for external input; use JSON with an explicit schema, or an ObjectInputFilter allow-list.",
				},
				{
					ID:          "php-unserialize",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\bunserialize\s*\(`,
					Unless:      `(?i)allowed_classes`,
					Message:     "unserialize() without allowed_classes restriction",
					Severity:    "high",
					Remediation: "Prefer json_decode; if unserialize is unavoidable, pass ['allowed_classes' => false].",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "sensitive-data",
			Name:        "Sensitive Data Exposure",
			Category:    "sensitive_data",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "medium",
			CWE:         "CWE-532",
			Description: "Secrets and personal data written to logs or sent over cleartext channels.",
			Remediation: "Keep secrets out of logs and use TLS for anything that carries credentials.",
			Languages:   []string{"*"},
			Detectors: []Detector{
				{
					ID:          "secret-in-log",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(console\.log|logger\.(info|debug|warn)|log\.(info|debug|printf)|print)\s*\([^)\n]*(password|token|secret|ssn|credit[_-]?card)`,
					Message:     "Sensitive value written to a log sink",
					Severity:    "medium",
					Remediation: "Log an opaque reference or a redacted form; never the raw credential.",
				},
				{
					ID:          "cleartext-auth-url",
					Kind:        DetectorRegex,
					Pattern:     `(?i)["']http://[^"'\n]*(login|auth|token|password)[^"'\n]*["']`,
					Message:     "Credential-bearing endpoint addressed over plain HTTP",
					Severity:    "medium",
					Remediation: "Serve authentication endpoints over HTTPS only.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "memory",
			Name:        "Unsafe Memory Management",
			Category:    "memory",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "high",
			CWE:         "CWE-120",
			Description: "Unbounded copy and format functions that overflow fixed-size buffers.",
			Remediation: "Use length-bounded variants and check allocation sizes.",
			Languages:   []string{"c"},
			Detectors: []Detector{
				{
					ID:            "unbounded-copy",
					Kind:          DetectorRegex,
					Pattern:       `\b(strcpy|strcat|sprintf|gets)\s*\(`,
					CaseSensitive: true,
					Message:       "Unbounded buffer write",
					Severity:      "high",
					Remediation:   "Replace with strncpy/strncat/snprintf/fgets and pass the destination size.",
				},
				{
					ID:            "alloca-usage",
					Kind:          DetectorRegex,
					Pattern:       `\balloca\s*\(`,
					CaseSensitive: true,
					Message:       "alloca with a potentially attacker-sized allocation",
					Severity:      "medium",
					Remediation:   "Allocate on the heap with an explicit size check, or use a fixed-size stack buffer.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "error-handling",
			Name:        "Improper Error Handling",
			Category:    "error_handling",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "low",
			CWE:         "CWE-209",
			Description: "Swallowed exceptions and internal error details leaked to clients.",
			Remediation: "Handle or propagate every error; return generic messages to clients and log details server-side.",
			Languages:   []string{"javascript", "typescript", "java", "php", "python", "csharp"},
			Detectors: []Detector{
				{
					ID:          "empty-catch",
					Kind:        DetectorRegex,
					Pattern:     `catch\s*(\([^)]*\))?\s*\{\s*\}`,
					CaseSensitive: true,
					Message:     "Exception caught and discarded",
					Severity:    "low",
					Remediation: "Log the failure or rethrow; an empty catch hides security-relevant faults.",
				},
				{
					ID:          "bare-except-pass",
					Kind:        DetectorRegex,
					Pattern:     `except\s*(Exception)?\s*:\s*\n\s*pass`,
					CaseSensitive: true,
					Message:     "Exception silently swallowed",
					Severity:    "low",
					Remediation: "Catch the narrowest exception type and at minimum log it.",
				},
				{
					ID:          "stacktrace-to-client",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(printStackTrace\s*\(|(res|response)\.(send|write|json)\s*\([^)\n]*\b(err|error|exception)\b[^)\n]*\.(stack|message))`,
					Message:     "Internal error detail returned to the client",
					Severity:    "medium",
					Remediation: "Return a generic error body with a correlation id; keep stack traces in server logs.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "session",
			Name:        "Weak Session Management",
			Category:    "session",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "high",
			CWE:         "CWE-614",
			Description: "Session cookies without transport/script protections and fixation-prone session ids.",
			Remediation: "Set httpOnly, secure, and sameSite on session cookies; regenerate ids at login.",
			Languages:   []string{"javascript", "typescript", "php", "python", "java", "ruby"},
			Detectors: []Detector{
				{
					ID:          "insecure-cookie",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(res\.cookie|setcookie|set_cookie|response\.addCookie)\s*\([^)\n]*\)`,
					Unless:      `(?i)(httponly|http_only)`,
					Message:     "Cookie set without httpOnly protection",
					Severity:    "high",
					Remediation: "Pass httpOnly (and secure, sameSite) when setting session cookies.",
				},
				{
					ID:          "session-id-from-request",
					Kind:        DetectorRegex,
					Pattern:     `(?i)session_id\s*\(\s*\$_(GET|POST|REQUEST|COOKIE)`,
					Message:     "Session id accepted from request input (fixation)",
					Severity:    "high",
					Remediation: "Never adopt a caller-provided session id; regenerate the id after authentication.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "configuration",
			Name:        "Insecure Configuration",
			Category:    "configuration",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "medium",
			CWE:         "CWE-16",
			Description: "Debug modes, wildcard CORS, and disabled certificate verification.",
			Remediation: "Ship hardened defaults; relax them per-environment, never in committed code.",
			Languages:   []string{"*"},
			Detectors: []Detector{
				{
					ID:          "tls-verify-disabled",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(verify\s*=\s*False|rejectUnauthorized\s*:\s*false|InsecureSkipVerify\s*:\s*true|CURLOPT_SSL_VERIFYPEER\s*,\s*(0|false))`,
					Message:     "TLS certificate verification disabled",
					Severity:    "high",
					Remediation: "Re-enable verification; pin or provision the expected CA instead of trusting everything.",
				},
				{
					ID:          "cors-wildcard",
					Kind:        DetectorRegex,
					Pattern:     `(?i)access-control-allow-origin[^\n]{0,20}["']\*["']`,
					Message:     "CORS allows any origin",
					Severity:    "medium",
					Remediation: "Allow-list the origins that actually need access; wildcard origins defeat same-origin protections.",
				},
				{
					ID:          "debug-enabled",
					Kind:        DetectorRegex,
					Pattern:     `(?im)^\s*debug\s*[:=]\s*true\b`,
					Message:     "Debug mode enabled",
					Severity:    "low",
					Remediation: "Disable debug output in committed configuration; enable it per-environment instead.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "file-handling",
			Name:        "Unsafe File Handling",
			Category:    "file_handling",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "high",
			CWE:         "CWE-22",
			Description: "Request-controlled paths reaching filesystem APIs and unrestricted uploads.",
			Remediation: "Resolve paths against a fixed base directory and validate the result stays inside it.",
			Languages:   []string{"javascript", "typescript", "java", "php", "python", "ruby", "csharp"},
			Detectors: []Detector{
				{
					ID:          "path-from-request",
					Kind:        DetectorRegex,
					Pattern:     `(?i)\b(readFile(Sync)?|createReadStream|fopen|file_get_contents|include|require(_once)?|open|sendFile)\s*\([^)\n]*(req\.(params|query|body)|request\.(args|GET|POST|form)|\$_(GET|POST|REQUEST))`,
					Message:     "Filesystem access with a request-controlled path",
					Severity:    "high",
					Remediation: "Join the input to a fixed base directory, canonicalize, and reject paths escaping the base.",
				},
				{
					ID:          "unrestricted-upload",
					Kind:        DetectorRegex,
					Pattern:     `(?i)move_uploaded_file\s*\([^)\n]*\$_FILES`,
					Message:     "Upload moved to disk without type or name validation in the same call",
					Severity:    "medium",
					Remediation: "Validate extension and content type against an allow-list and generate the stored filename server-side.",
				},
			},
		},
		{
			APIVersion:  APIVersion,
			ID:          "input-validation",
			Name:        "Missing Input Validation",
			Category:    "input_validation",
			Status:      StatusEnabled,
			Source:      SourceBuiltin,
			Severity:    "medium",
			CWE:         "CWE-79",
			Description: "Untrusted data written into the DOM or used in redirects without validation.",
			Remediation: "Validate inputs at the boundary and encode output for its destination context.",
			Languages:   []string{"javascript", "typescript", "php", "java", "python"},
			Detectors: []Detector{
				{
					ID:          "dom-sink-assignment",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(\.innerHTML\s*=|document\.write\s*\(|dangerouslySetInnerHTML)`,
					Message:     "Dynamic content written to an HTML-interpreting sink",
					Severity:    "medium",
					Remediation: "Use textContent or a sanitizer for anything that may contain user input.",
				},
				{
					ID:          "open-redirect",
					Kind:        DetectorRegex,
					Pattern:     `(?i)(res\.redirect|sendRedirect|header\s*\(\s*["']Location:)\s*\(?[^)\n]*(req\.(query|params|body)|request\.(args|GET)|\$_(GET|REQUEST))`,
					Message:     "Redirect target taken from request input",
					Severity:    "medium",
					Remediation: "Map allowed destinations server-side or validate the target against an allow-list of hosts.",
				},
			},
		},
	}
}
