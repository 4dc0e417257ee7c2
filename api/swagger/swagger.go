package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Instituto Admin API",
        "description": "Back office of the institute: login, alumnos and the domain store (courses, inscriptions, caja)",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Credential check against usuarios"},
        {"name": "Alumnos", "description": "Server side student records"},
        {"name": "Store", "description": "Domain store collections"},
        {"name": "Inscriptions", "description": "Enrollments, installments and quotes"},
        {"name": "Caja", "description": "Cash register movements and daily report"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login exitoso", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "400": {"description": "Missing email or password", "schema": {"$ref": "#/definitions/Ack"}},
                    "401": {"description": "Credenciales inválidas", "schema": {"$ref": "#/definitions/Ack"}}
                }
            }
        },
        "/alumnos": {
            "get": {
                "tags": ["Alumnos"],
                "summary": "List students",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Alumno"}}}}
            },
            "post": {
                "tags": ["Alumnos"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AlumnoPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Alumno"}},
                    "400": {"description": "Nombre, apellido y DNI son requeridos", "schema": {"$ref": "#/definitions/Ack"}}
                }
            }
        },
        "/alumnos/{id}": {
            "put": {
                "tags": ["Alumnos"],
                "summary": "Replace student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AlumnoPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Alumno"}},
                    "404": {"description": "Alumno no encontrado", "schema": {"$ref": "#/definitions/Ack"}}
                }
            },
            "delete": {
                "tags": ["Alumnos"],
                "summary": "Delete student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Alumno eliminado", "schema": {"$ref": "#/definitions/Ack"}}}
            }
        },
        "/store": {
            "get": {
                "tags": ["Store"],
                "summary": "Full store snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/store/reset": {
            "post": {
                "tags": ["Store"],
                "summary": "Reset every collection to empty",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Ack"}}}
            }
        },
        "/store/{collection}": {
            "get": {
                "tags": ["Store"],
                "summary": "List a collection",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string", "enum": ["students", "professors", "courses", "becas", "personal", "caja"]}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Store"],
                "summary": "Add a record; the id is assigned by the store",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Datos inválidos", "schema": {"$ref": "#/definitions/Ack"}}
                }
            }
        },
        "/store/{collection}/{id}": {
            "get": {
                "tags": ["Store"],
                "summary": "Get one record",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Registro no encontrado"}}
            },
            "patch": {
                "tags": ["Store"],
                "summary": "Merge fields into a record; the id never changes",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Registro no encontrado"}}
            },
            "delete": {
                "tags": ["Store"],
                "summary": "Remove a record",
                "parameters": [
                    {"name": "collection", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "Registro eliminado"}, "404": {"description": "Registro no encontrado"}}
            }
        },
        "/store/quote": {
            "post": {
                "tags": ["Inscriptions"],
                "summary": "Price an enrollment without storing it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuoteRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/store/inscriptions": {
            "get": {
                "tags": ["Inscriptions"],
                "summary": "List inscriptions with payment summary",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Inscriptions"],
                "summary": "Enroll a student and record the cash movement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Datos de inscripción inválidos"}, "404": {"description": "Not found"}}
            }
        },
        "/store/inscriptions/{id}": {
            "get": {
                "tags": ["Inscriptions"],
                "summary": "Inscription payment summary",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Inscripción no encontrada"}}
            },
            "delete": {
                "tags": ["Inscriptions"],
                "summary": "Delete inscription",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "retractMovements", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Inscripción no encontrada"}}
            }
        },
        "/store/inscriptions/{id}/installments/{number}/pay": {
            "post": {
                "tags": ["Inscriptions"],
                "summary": "Pay one installment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "number", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"formaPago": {"type": "string"}}}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "La cuota ya está pagada"}}
            }
        },
        "/store/caja/daily": {
            "get": {
                "tags": ["Caja"],
                "summary": "Movements of one day with totals per payment method",
                "parameters": [
                    {"name": "fecha", "in": "query", "type": "string", "format": "date"},
                    {"name": "formaPago", "in": "query", "type": "string", "enum": ["Efectivo", "Transferencia", "Tarjeta"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Fecha inválida"}}
            }
        },
        "/store/caja/daily/export": {
            "get": {
                "tags": ["Caja"],
                "summary": "Download the daily register",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "fecha", "in": "query", "type": "string", "format": "date"},
                    {"name": "formaPago", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Attachment"}}
            }
        }
    },
    "definitions": {
        "Ack": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "token": {"type": "string"},
                "usuario": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "string"},
                        "email": {"type": "string"},
                        "name": {"type": "string"},
                        "role": {"type": "string"}
                    }
                }
            }
        },
        "AlumnoPayload": {
            "type": "object",
            "required": ["nombre", "apellido", "dni"],
            "properties": {
                "nombre": {"type": "string"},
                "apellido": {"type": "string"},
                "dni": {"type": "string"},
                "telefono": {"type": "string"},
                "email": {"type": "string"},
                "direccion": {"type": "string"},
                "localidad": {"type": "string"},
                "estado": {"type": "string", "enum": ["Activo", "Inactivo"]},
                "fechaNacimiento": {"type": "string"},
                "padreTutor": {"type": "string"},
                "observaciones": {"type": "string"}
            }
        },
        "Alumno": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nombre": {"type": "string"},
                "apellido": {"type": "string"},
                "dni": {"type": "string"},
                "estado": {"type": "string"},
                "fechaCreacion": {"type": "string", "format": "date-time"},
                "fechaActualizacion": {"type": "string", "format": "date-time"}
            }
        },
        "QuoteRequest": {
            "type": "object",
            "required": ["courseId", "paymentType"],
            "properties": {
                "courseId": {"type": "integer"},
                "paymentType": {"type": "string", "enum": ["Efectivo", "Tarjeta"]},
                "fullPayment": {"type": "boolean"},
                "cuotas": {"type": "integer"},
                "tipoCertificado": {"type": "string"},
                "becaId": {"type": "integer"},
                "hasBonus": {"type": "boolean"},
                "bonusAmount": {"type": "number"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "required": ["studentId", "courseId", "paymentType"],
            "properties": {
                "studentId": {"type": "integer"},
                "courseId": {"type": "integer"},
                "professorId": {"type": "integer"},
                "paymentType": {"type": "string", "enum": ["Efectivo", "Tarjeta"]},
                "fullPayment": {"type": "boolean"},
                "cuotas": {"type": "integer"},
                "tipoCertificado": {"type": "string"},
                "becaId": {"type": "integer"},
                "hasBonus": {"type": "boolean"},
                "bonusAmount": {"type": "number"},
                "formaPago": {"type": "string", "enum": ["Efectivo", "Transferencia", "Tarjeta"]},
                "estado": {"type": "string"},
                "activo": {"type": "boolean"},
                "pago": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
